package cart

import "errors"

// Sentinel errors for everything a caller is expected to branch on. Anything
// else coming out of this package is a persistence failure wrapped with
// context.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCartNotFound      = errors.New("cart not found")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrNoIdentity        = errors.New("no cart identity")
)
