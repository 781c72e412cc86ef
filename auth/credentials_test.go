package auth_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/darccuir/storefront-api/auth"
	"github.com/darccuir/storefront-api/cart"
	"github.com/darccuir/storefront-api/config"
	"github.com/darccuir/storefront-api/mailer"
	"github.com/darccuir/storefront-api/models"
	"github.com/darccuir/storefront-api/routes"
)

func newAuthEnv(t *testing.T) (*gin.Engine, *gorm.DB, *cart.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Variant{}, &models.Subrubro{},
		&models.Cart{}, &models.CartLine{}, &models.Order{}, &models.OrderItem{},
	))

	log := logrus.New()
	svc := cart.NewService(db, cart.Config{}, log)

	r := gin.New()
	routes.SetupRoutes(r, routes.Deps{
		DB:     db,
		Cfg:    config.Config{JWTSecret: "auth-test-secret", AdminAPIKey: "k"},
		Carts:  svc,
		Mailer: mailer.New("", "test@test", log),
		Log:    log,
	})
	return r, db, svc
}

func seedCredentialsUser(t *testing.T, db *gorm.DB, email, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Test",
		Provider:     "credentials",
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedSessionCart(t *testing.T, db *gorm.DB, svc *cart.Service, token string, qty int) models.Product {
	t.Helper()
	p := models.Product{
		SKU: "AUTH-" + token, Name: "Bota", Price: decimal.NewFromInt(100),
		Stock: 50, Rubro: models.RubroDarccuir, Active: true,
	}
	require.NoError(t, db.Create(&p).Error)
	_, err := svc.Add(cart.Identity{SessionToken: token}, p.ID, qty, "")
	require.NoError(t, err)
	return p
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func clearedSessionCookie(res *http.Response) bool {
	for _, ck := range res.Cookies() {
		if ck.Name == auth.SessionCookieName && ck.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestLoginMergesGuestCartAndClearsCookie(t *testing.T) {
	r, db, svc := newAuthEnv(t)
	user := seedCredentialsUser(t, db, "ana@darccuir.com", "secreta123")
	seedSessionCart(t, db, svc, "guest-login-tok", 3)

	w := postJSON(t, r, "/auth/login",
		gin.H{"email": "ana@darccuir.com", "password": "secreta123"},
		&http.Cookie{Name: auth.SessionCookieName, Value: "guest-login-tok"},
	)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["token"])

	assert.True(t, clearedSessionCookie(w.Result()), "login must clear the anonymous cookie")

	c, err := svc.Peek(cart.Identity{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)

	_, err = svc.Peek(cart.Identity{SessionToken: "guest-login-tok"})
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
}

func TestLoginWithBadCredentials(t *testing.T) {
	r, db, _ := newAuthEnv(t)
	seedCredentialsUser(t, db, "ana@darccuir.com", "secreta123")

	w := postJSON(t, r, "/auth/login", gin.H{"email": "ana@darccuir.com", "password": "wrong!!!!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Credenciales inválidas", body["message"])
}

func TestRegisterAdoptsGuestCart(t *testing.T) {
	r, db, svc := newAuthEnv(t)
	seedSessionCart(t, db, svc, "guest-reg-tok", 2)

	w := postJSON(t, r, "/auth/register",
		gin.H{"email": "nuevo@yatay.com", "password": "secreta123", "name": "Nuevo"},
		&http.Cookie{Name: auth.SessionCookieName, Value: "guest-reg-tok"},
	)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, clearedSessionCookie(w.Result()))

	var user models.User
	require.NoError(t, db.Where("email = ?", "nuevo@yatay.com").First(&user).Error)

	c, err := svc.Peek(cart.Identity{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, db, _ := newAuthEnv(t)
	seedCredentialsUser(t, db, "dup@darccuir.com", "secreta123")

	w := postJSON(t, r, "/auth/register",
		gin.H{"email": "dup@darccuir.com", "password": "secreta123", "name": "Dup"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// A broken merge must never block the login itself.
func TestLoginSucceedsWhenMergeFails(t *testing.T) {
	r, db, svc := newAuthEnv(t)
	seedCredentialsUser(t, db, "ana@darccuir.com", "secreta123")
	seedSessionCart(t, db, svc, "guest-broken-tok", 1)

	require.NoError(t, db.Migrator().DropTable(&models.CartLine{}))

	w := postJSON(t, r, "/auth/login",
		gin.H{"email": "ana@darccuir.com", "password": "secreta123"},
		&http.Cookie{Name: auth.SessionCookieName, Value: "guest-broken-tok"},
	)
	require.Equal(t, http.StatusOK, w.Code, "merge failure is swallowed")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["token"])
	assert.True(t, clearedSessionCookie(w.Result()), "cookie cleared even on merge failure")
}
