// Package cart implements the shopping-cart core: identity resolution for
// user-owned and anonymous carts, the add/update/remove/clear mutations with
// product-level stock checks, and the merge of an anonymous cart into a
// user's cart at login.
//
// Line identity is the pair (product, variant color name) everywhere: the
// mutations, the merge and the client cache all key on the same tuple, with
// the empty color meaning "no variant". Variant hex codes are carried for
// display only.
package cart

import (
	stderrors "errors"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/models"
)

// Config tunes merge behavior. The zero value matches lines on the full
// (product, variant color) identity.
type Config struct {
	// MergeIgnoresVariant makes Merge match lines by product only, summing a
	// guest line into whichever line of that product it finds first.
	MergeIgnoresVariant bool
}

// Service owns all cart reads and writes. One instance is built at startup
// around the shared DB handle and injected into every handler that needs it.
type Service struct {
	db  *gorm.DB
	cfg Config
	log *logrus.Logger
}

func NewService(db *gorm.DB, cfg Config, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{db: db, cfg: cfg, log: log}
}

// AddResult reports the product's current stock so the client can cap its
// quantity selector.
type AddResult struct {
	AvailableStock int
}

// Add puts quantity units of a product (optionally a color variant of it)
// into the identity's cart, creating the cart if needed. Re-adding an
// existing line sums quantities. Stock is checked at product level against
// the new line total.
func (s *Service) Add(id Identity, productID uint, quantity int, variantColor string) (AddResult, error) {
	if quantity < 1 {
		return AddResult{}, ErrInvalidQuantity
	}

	product, err := s.loadProduct(productID)
	if err != nil {
		return AddResult{}, err
	}
	if quantity > product.Stock {
		return AddResult{AvailableStock: product.Stock}, ErrInsufficientStock
	}

	cart, err := s.Resolve(id)
	if err != nil {
		return AddResult{}, err
	}

	var line models.CartLine
	err = s.db.
		Where("cart_id = ? AND product_id = ? AND variant_color = ?", cart.ID, productID, variantColor).
		First(&line).Error

	switch {
	case err == nil:
		return s.growLine(&line, quantity, product)

	case stderrors.Is(err, gorm.ErrRecordNotFound):
		hex := ""
		if v := product.VariantByColor(variantColor); v != nil {
			hex = v.ColorHex
		}
		fresh := models.CartLine{
			CartID:       cart.ID,
			ProductID:    productID,
			Quantity:     quantity,
			VariantColor: variantColor,
			VariantHex:   hex,
			AddedAt:      time.Now(),
		}
		if createErr := s.db.Create(&fresh).Error; createErr != nil {
			// The identity index rejected a duplicate: a concurrent add won
			// the race. Fold our quantity into the winner's line.
			var existing models.CartLine
			refetch := s.db.
				Where("cart_id = ? AND product_id = ? AND variant_color = ?", cart.ID, productID, variantColor).
				First(&existing).Error
			if refetch != nil {
				return AddResult{}, errors.Wrap(createErr, "creating cart line")
			}
			return s.growLine(&existing, quantity, product)
		}
		return AddResult{AvailableStock: product.Stock}, nil

	default:
		return AddResult{}, errors.Wrap(err, "loading cart line")
	}
}

func (s *Service) growLine(line *models.CartLine, quantity int, product *models.Product) (AddResult, error) {
	total := line.Quantity + quantity
	if total > product.Stock {
		return AddResult{AvailableStock: product.Stock}, ErrInsufficientStock
	}
	line.Quantity = total
	line.AddedAt = time.Now()
	if err := s.db.Save(line).Error; err != nil {
		return AddResult{}, errors.Wrap(err, "updating cart line")
	}
	return AddResult{AvailableStock: product.Stock}, nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities below one
// are rejected; removal is its own operation.
func (s *Service) UpdateQuantity(id Identity, productID uint, variantColor string, quantity int) (AddResult, error) {
	if quantity < 1 {
		return AddResult{}, ErrInvalidQuantity
	}

	cart, err := s.Peek(id)
	if err != nil {
		return AddResult{}, err
	}

	var line models.CartLine
	err = s.db.
		Where("cart_id = ? AND product_id = ? AND variant_color = ?", cart.ID, productID, variantColor).
		First(&line).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return AddResult{}, ErrLineNotFound
		}
		return AddResult{}, errors.Wrap(err, "loading cart line")
	}

	// Stock may have changed since the line was added; check the live figure.
	product, err := s.loadProduct(productID)
	if err != nil {
		return AddResult{}, err
	}
	if quantity > product.Stock {
		return AddResult{AvailableStock: product.Stock}, ErrInsufficientStock
	}

	line.Quantity = quantity
	if err := s.db.Save(&line).Error; err != nil {
		return AddResult{}, errors.Wrap(err, "updating cart line")
	}
	return AddResult{AvailableStock: product.Stock}, nil
}

// Remove deletes one line from the cart.
func (s *Service) Remove(id Identity, productID uint, variantColor string) error {
	cart, err := s.Peek(id)
	if err != nil {
		return err
	}

	res := s.db.
		Where("cart_id = ? AND product_id = ? AND variant_color = ?", cart.ID, productID, variantColor).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting cart line")
	}
	if res.RowsAffected == 0 {
		return ErrLineNotFound
	}
	return nil
}

// Clear deletes every line of the identity's cart. A missing cart is not an
// error: the cart is already empty. The cart row itself is kept.
func (s *Service) Clear(id Identity) error {
	cart, err := s.Peek(id)
	if err != nil {
		if stderrors.Is(err, ErrCartNotFound) {
			return nil
		}
		return err
	}
	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartLine{}).Error; err != nil {
		return errors.Wrap(err, "clearing cart")
	}
	return nil
}

// LineView is one cart line joined with the product fields the storefront
// renders, priced for the caller's role.
type LineView struct {
	ProductID    uint            `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Image        string          `json:"image"`
	Stock        int             `json:"stock"`
	VariantColor string          `json:"variant_color,omitempty"`
	VariantHex   string          `json:"variant_hex,omitempty"`
}

// View is the authoritative cart snapshot the client reconciles against.
type View struct {
	Items []LineView      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Get returns the cart contents with a decimal total. Wholesale callers get
// the wholesale price where the product defines one. A missing cart reads as
// an empty one.
func (s *Service) Get(id Identity, wholesale bool) (View, error) {
	view := View{Items: []LineView{}, Total: decimal.Zero}

	cart, err := s.peek(id, "Lines", "Lines.Product", "Lines.Product.Variants")
	if err != nil {
		if stderrors.Is(err, ErrCartNotFound) {
			return view, nil
		}
		return view, err
	}

	for _, line := range cart.Lines {
		p := line.Product
		price := p.Price
		if wholesale && p.PriceWholesale.Valid {
			price = p.PriceWholesale.Decimal
		}

		image := ""
		if len(p.CoverImages) > 0 {
			image = p.CoverImages[0]
		}
		if v := p.VariantByColor(line.VariantColor); v != nil && len(v.Images) > 0 {
			image = v.Images[0]
		}

		subtotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Items = append(view.Items, LineView{
			ProductID:    p.ID,
			SKU:          p.SKU,
			Name:         p.Name,
			UnitPrice:    price,
			Quantity:     line.Quantity,
			Subtotal:     subtotal,
			Image:        image,
			Stock:        p.Stock,
			VariantColor: line.VariantColor,
			VariantHex:   line.VariantHex,
		})
		view.Total = view.Total.Add(subtotal)
	}
	return view, nil
}

func (s *Service) loadProduct(productID uint) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Variants").First(&product, productID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, errors.Wrap(err, "loading product")
	}
	return &product, nil
}
