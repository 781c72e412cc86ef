package cart

import (
	stderrors "errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/models"
)

// MergeOutcome reports what Merge did with the anonymous cart.
type MergeOutcome struct {
	// Adopted: the whole anonymous cart was re-parented to the user.
	Adopted bool
	// Merged: lines were summed or moved into the user's existing cart.
	Merged bool
}

// Merge reconciles the anonymous cart behind sessionToken into userID's cart.
// Runs once per login or registration. If the user has no cart yet, the
// anonymous cart changes owner in place; otherwise each guest line is summed
// into a matching user line or moved across, and the emptied anonymous cart
// row is deleted. An absent or empty anonymous cart is a no-op.
//
// The whole reconciliation runs in one transaction. Callers in the sign-in
// path use MergeAtLogin instead, which never lets a failure block the login.
func (s *Service) Merge(userID, sessionToken string) (MergeOutcome, error) {
	var out MergeOutcome
	if userID == "" || sessionToken == "" {
		return out, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var anon models.Cart
		if err := tx.Preload("Lines").Where("session_id = ?", sessionToken).First(&anon).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if len(anon.Lines) == 0 {
			// Nothing to carry over; drop the orphan row so the token can't
			// resurrect it after the cookie is cleared.
			return tx.Delete(&anon).Error
		}

		var userCart models.Cart
		err := tx.Preload("Lines").Where("user_id = ?", userID).First(&userCart).Error
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			// Identity transfer: the anonymous cart becomes the user's cart,
			// lines untouched.
			if err := tx.Model(&anon).Updates(map[string]interface{}{
				"user_id":    userID,
				"session_id": nil,
			}).Error; err != nil {
				return err
			}
			out.Adopted = true
			return nil
		}
		if err != nil {
			return err
		}

		for i := range anon.Lines {
			guestLine := anon.Lines[i]

			match := tx.Where("cart_id = ? AND product_id = ?", userCart.ID, guestLine.ProductID)
			if !s.cfg.MergeIgnoresVariant {
				match = match.Where("variant_color = ?", guestLine.VariantColor)
			}

			var userLine models.CartLine
			lookupErr := match.First(&userLine).Error
			switch {
			case lookupErr == nil:
				userLine.Quantity += guestLine.Quantity
				userLine.AddedAt = time.Now()
				if err := tx.Save(&userLine).Error; err != nil {
					return err
				}
				if err := tx.Delete(&guestLine).Error; err != nil {
					return err
				}

			case stderrors.Is(lookupErr, gorm.ErrRecordNotFound):
				// Move, not copy.
				if err := tx.Model(&models.CartLine{}).
					Where("id = ?", guestLine.ID).
					Update("cart_id", userCart.ID).Error; err != nil {
					return err
				}

			default:
				return lookupErr
			}
		}

		out.Merged = true
		return tx.Delete(&anon).Error
	})
	if err != nil {
		return MergeOutcome{}, err
	}
	return out, nil
}

// MergeAtLogin is the fail-open wrapper the authentication handlers call:
// losing a guest cart is acceptable, blocking a login is not. Failures are
// logged and swallowed.
func (s *Service) MergeAtLogin(userID, sessionToken string) MergeOutcome {
	out, err := s.Merge(userID, sessionToken)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err,
		}).Error("cart merge failed, continuing login")
		return MergeOutcome{}
	}
	return out
}
