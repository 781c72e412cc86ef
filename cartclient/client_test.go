package cartclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer plays the API: it records mutations and serves a canned
// authoritative cart. rejectMutations makes every mutation fail the way the
// server does, with {ok:false}.
type fakeServer struct {
	*httptest.Server
	serverItems     []Item
	mutations       []string
	rejectMutations bool
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"ok": true, "items": fs.serverItems, "total": "0",
			})
		case http.MethodDelete:
			fs.handleMutation(w, "clear")
		}
	})
	mux.HandleFunc("/cart/items", func(w http.ResponseWriter, r *http.Request) {
		fs.handleMutation(w, r.Method)
	})
	mux.HandleFunc("/cart/items/", func(w http.ResponseWriter, r *http.Request) {
		fs.handleMutation(w, "DELETE")
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) handleMutation(w http.ResponseWriter, kind string) {
	fs.mutations = append(fs.mutations, kind)
	if fs.rejectMutations {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": false, "message": "Stock insuficiente",
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "available_stock": 10})
}

func boot(t *testing.T, fs *fakeServer) *Client {
	t.Helper()
	c, err := New(fs.URL)
	require.NoError(t, err)
	return c
}

func item(id uint, color string, price string) Item {
	return Item{
		ProductID:    id,
		Name:         "Producto",
		UnitPrice:    decimal.RequireFromString(price),
		VariantColor: color,
		Stock:        10,
	}
}

func TestAddAppliesOptimisticallyBeforeServerReply(t *testing.T) {
	fs := newFakeServer(t)
	c := boot(t, fs)

	require.NoError(t, c.Add(context.Background(), item(1, "", "100"), 2))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, c.Total().Equal(decimal.RequireFromString("200")))
	assert.Equal(t, []string{http.MethodPost}, fs.mutations)
}

func TestAddSumsOnLocalIdentityMatch(t *testing.T) {
	fs := newFakeServer(t)
	c := boot(t, fs)
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, item(1, "negro", "100"), 1))
	require.NoError(t, c.Add(ctx, item(1, "negro", "100"), 2))
	require.NoError(t, c.Add(ctx, item(1, "", "100"), 1), "no-variant is its own identity")

	items := c.Items()
	require.Len(t, items, 2)
}

func TestRejectedMutationKeepsLocalStateUntilRefresh(t *testing.T) {
	fs := newFakeServer(t)
	c := boot(t, fs)
	ctx := context.Background()

	fs.rejectMutations = true
	err := c.Add(ctx, item(1, "", "50"), 3)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "Stock insuficiente", serverErr.Message)
	assert.Equal(t, http.StatusConflict, serverErr.Status)

	// Policy: the optimistic change is not rolled back at the call site.
	require.Len(t, c.Items(), 1)

	// The next refresh overwrites the cache with the server's truth.
	fs.serverItems = []Item{}
	require.NoError(t, c.Refresh(ctx))
	assert.Empty(t, c.Items())
}

func TestRefreshOverwritesLocalCacheEntirely(t *testing.T) {
	fs := newFakeServer(t)
	c := boot(t, fs)
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, item(1, "", "10"), 5))
	require.NoError(t, c.Add(ctx, item(2, "rojo", "20"), 1))

	fs.serverItems = []Item{
		{ProductID: 7, Name: "Cinturón", UnitPrice: decimal.RequireFromString("80"), Quantity: 1},
	}
	require.NoError(t, c.Refresh(ctx))

	items := c.Items()
	require.Len(t, items, 1, "server wins, no client-side merge")
	assert.EqualValues(t, 7, items[0].ProductID)
	assert.True(t, c.Total().Equal(decimal.RequireFromString("80")))
}

func TestUpdateRemoveClearMutateLocallyAndRemotely(t *testing.T) {
	fs := newFakeServer(t)
	c := boot(t, fs)
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, item(1, "negro", "100"), 1))
	require.NoError(t, c.Add(ctx, item(2, "", "30"), 2))

	require.NoError(t, c.UpdateQuantity(ctx, 1, "negro", 4))
	assert.True(t, c.Total().Equal(decimal.RequireFromString("460")))

	require.NoError(t, c.Remove(ctx, 2, ""))
	require.Len(t, c.Items(), 1)

	require.NoError(t, c.Clear(ctx))
	assert.Empty(t, c.Items())
	assert.True(t, c.Total().IsZero())

	assert.Equal(t, []string{"POST", "POST", "PUT", "DELETE", "clear"}, fs.mutations)
}
