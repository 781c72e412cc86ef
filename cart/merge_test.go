package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/cart"
	"github.com/darccuir/storefront-api/models"
)

func cartCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Cart{}).Count(&n).Error)
	return n
}

func TestMergeIntoExistingCartSumsAndMoves(t *testing.T) {
	svc, db := newService(t)
	p1 := seedProduct(t, db, "MRG-001", 50)
	p2 := seedProduct(t, db, "MRG-002", 50)

	anon := cart.Identity{SessionToken: "guest-tok"}
	user := cart.Identity{UserID: "user-m1"}

	_, err := svc.Add(anon, p1.ID, 3, "")
	require.NoError(t, err)
	_, err = svc.Add(anon, p2.ID, 1, "")
	require.NoError(t, err)
	_, err = svc.Add(user, p1.ID, 2, "")
	require.NoError(t, err)

	out, err := svc.Merge("user-m1", "guest-tok")
	require.NoError(t, err)
	assert.True(t, out.Merged)
	assert.False(t, out.Adopted)

	c, err := svc.Peek(user)
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)

	byProduct := map[uint]int{}
	for _, l := range c.Lines {
		byProduct[l.ProductID] = l.Quantity
	}
	assert.Equal(t, 5, byProduct[p1.ID], "conflicting line sums quantities")
	assert.Equal(t, 1, byProduct[p2.ID], "non-conflicting line moves across")

	_, err = svc.Peek(anon)
	assert.ErrorIs(t, err, cart.ErrCartNotFound, "anonymous cart row is gone")
	assert.EqualValues(t, 1, cartCount(t, db))
}

func TestMergeAdoptsCartWhenUserHasNone(t *testing.T) {
	svc, db := newService(t)
	p := seedProduct(t, db, "MRG-003", 50)

	anon := cart.Identity{SessionToken: "guest-adopt"}
	_, err := svc.Add(anon, p.ID, 4, "negro")
	require.NoError(t, err)

	out, err := svc.Merge("user-m2", "guest-adopt")
	require.NoError(t, err)
	assert.True(t, out.Adopted)
	assert.False(t, out.Merged)

	c, err := svc.Peek(cart.Identity{UserID: "user-m2"})
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 4, c.Lines[0].Quantity)
	assert.Equal(t, "negro", c.Lines[0].VariantColor)
	assert.Nil(t, c.SessionID, "session token cleared on adoption")

	_, err = svc.Peek(anon)
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
	assert.EqualValues(t, 1, cartCount(t, db), "adoption transfers the row, it does not copy")
}

func TestMergeWithAbsentOrEmptyGuestCart(t *testing.T) {
	svc, db := newService(t)

	out, err := svc.Merge("user-m3", "never-seen-token")
	require.NoError(t, err)
	assert.False(t, out.Adopted)
	assert.False(t, out.Merged)

	// An empty anonymous cart row is dropped outright.
	empty := cart.Identity{SessionToken: "guest-empty"}
	_, err = svc.Resolve(empty)
	require.NoError(t, err)

	out, err = svc.Merge("user-m3", "guest-empty")
	require.NoError(t, err)
	assert.False(t, out.Merged)
	_, err = svc.Peek(empty)
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
	assert.EqualValues(t, 0, cartCount(t, db))
}

func TestMergeMatchesFullIdentityKeyByDefault(t *testing.T) {
	svc, db := newService(t)
	p := seedProduct(t, db, "MRG-004", 50,
		models.Variant{ColorName: "negro", ColorHex: "#000000"},
		models.Variant{ColorName: "suela", ColorHex: "#8b5a2b"},
	)

	anon := cart.Identity{SessionToken: "guest-variants"}
	user := cart.Identity{UserID: "user-m4"}

	_, err := svc.Add(anon, p.ID, 2, "negro")
	require.NoError(t, err)
	_, err = svc.Add(user, p.ID, 1, "suela")
	require.NoError(t, err)

	_, err = svc.Merge("user-m4", "guest-variants")
	require.NoError(t, err)

	c, err := svc.Peek(user)
	require.NoError(t, err)
	require.Len(t, c.Lines, 2, "different variants stay separate lines")

	byColor := map[string]int{}
	for _, l := range c.Lines {
		byColor[l.VariantColor] = l.Quantity
	}
	assert.Equal(t, 2, byColor["negro"])
	assert.Equal(t, 1, byColor["suela"])
}

// MergeIgnoresVariant reproduces the legacy behavior where merge matched on
// product alone, folding a guest variant line into whatever line of that
// product the user already had.
func TestMergeIgnoresVariantWhenConfigured(t *testing.T) {
	db := newTestDB(t)
	svc := cart.NewService(db, cart.Config{MergeIgnoresVariant: true}, nil)
	p := seedProduct(t, db, "MRG-005", 50,
		models.Variant{ColorName: "negro", ColorHex: "#000000"},
		models.Variant{ColorName: "suela", ColorHex: "#8b5a2b"},
	)

	anon := cart.Identity{SessionToken: "guest-legacy"}
	user := cart.Identity{UserID: "user-m5"}

	_, err := svc.Add(anon, p.ID, 2, "negro")
	require.NoError(t, err)
	_, err = svc.Add(user, p.ID, 1, "suela")
	require.NoError(t, err)

	_, err = svc.Merge("user-m5", "guest-legacy")
	require.NoError(t, err)

	c, err := svc.Peek(user)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1, "product-only matching collapses the variants")
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, "suela", c.Lines[0].VariantColor, "the user's line wins the identity")
}

func TestMergeAtLoginSwallowsFailure(t *testing.T) {
	svc, db := newService(t)
	p := seedProduct(t, db, "MRG-006", 50)

	anon := cart.Identity{SessionToken: "guest-broken"}
	_, err := svc.Add(anon, p.ID, 1, "")
	require.NoError(t, err)

	// Sabotage the schema so the merge transaction fails.
	require.NoError(t, db.Migrator().DropTable(&models.CartLine{}))

	out := svc.MergeAtLogin("user-m6", "guest-broken")
	assert.False(t, out.Merged)
	assert.False(t, out.Adopted)
}
