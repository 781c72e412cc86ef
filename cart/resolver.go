package cart

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/models"
)

// Identity names the owner of a cart: an authenticated user or an anonymous
// visitor's session token. Exactly one field is set; the user always wins if
// both are present, so a logged-in request never touches the cookie cart.
type Identity struct {
	UserID       string
	SessionToken string
}

// Anonymous reports whether the identity is a cookie session.
func (id Identity) Anonymous() bool {
	return id.UserID == "" && id.SessionToken != ""
}

// Resolve returns the cart for the identity, creating an empty one if none
// exists yet. Lines are loaded.
func (s *Service) Resolve(id Identity) (*models.Cart, error) {
	cart, err := s.peek(id, "Lines")
	if err == nil {
		return cart, nil
	}
	if !stderrors.Is(err, ErrCartNotFound) {
		return nil, err
	}

	fresh := models.Cart{}
	switch {
	case id.UserID != "":
		fresh.UserID = &id.UserID
	case id.SessionToken != "":
		fresh.SessionID = &id.SessionToken
	default:
		return nil, ErrNoIdentity
	}

	if err := s.db.Create(&fresh).Error; err != nil {
		// A concurrent request may have created the cart between our lookup
		// and the insert; the unique index on the owner column rejects ours,
		// so just load theirs.
		if cart, peekErr := s.peek(id, "Lines"); peekErr == nil {
			return cart, nil
		}
		return nil, errors.Wrap(err, "creating cart")
	}
	return &fresh, nil
}

// Peek returns the cart for the identity without creating anything. Callers
// that must not mint carts or sessions (Clear, Get) use this path.
func (s *Service) Peek(id Identity) (*models.Cart, error) {
	return s.peek(id, "Lines")
}

func (s *Service) peek(id Identity, preloads ...string) (*models.Cart, error) {
	q := s.db
	for _, p := range preloads {
		q = q.Preload(p)
	}

	switch {
	case id.UserID != "":
		q = q.Where("user_id = ?", id.UserID)
	case id.SessionToken != "":
		q = q.Where("session_id = ?", id.SessionToken)
	default:
		return nil, ErrCartNotFound
	}

	var cart models.Cart
	if err := q.First(&cart).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, errors.Wrap(err, "loading cart")
	}
	return &cart, nil
}
