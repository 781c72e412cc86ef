package auth

import (
	"context"
	stderrors "errors"
	"net/http"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/cart"
	"github.com/darccuir/storefront-api/config"
	"github.com/darccuir/storefront-api/models"
)

// Firebase wraps the admin SDK client used to verify Google ID tokens. Built
// once in main; nil when credentials are not configured, in which case the
// Google route is simply not registered.
type Firebase struct {
	client    *fbauth.Client
	projectID string
}

func NewFirebase(ctx context.Context, cfg config.Config) (*Firebase, error) {
	if cfg.FirebaseCredentialsJSON == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &Firebase{client: client, projectID: cfg.FirebaseProjectID}, nil
}

type googleLoginInput struct {
	IDToken string `json:"id_token" binding:"required"`
}

// POST /auth/google
func GoogleLogin(db *gorm.DB, carts *cart.Service, fb *Firebase, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input googleLoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Datos inválidos"})
			return
		}

		token, err := fb.client.VerifyIDTokenAndCheckRevoked(c.Request.Context(), input.IDToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Token de Google inválido"})
			return
		}
		if fb.projectID != "" && token.Audience != fb.projectID {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Token de Google inválido"})
			return
		}

		email, _ := token.Claims["email"].(string)
		name, _ := token.Claims["name"].(string)
		picture, _ := token.Claims["picture"].(string)

		var user models.User
		err = db.Where("id = ?", token.UID).First(&user).Error
		switch {
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				ID:       token.UID,
				Email:    email,
				Name:     name,
				Picture:  picture,
				Provider: "google",
				Role:     models.RoleUser,
			}
			if err := db.Create(&user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "No pudimos crear la cuenta"})
				return
			}
		case err == nil:
			db.Model(&user).Updates(models.User{Name: name, Picture: picture})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Ocurrió un error, intentá nuevamente"})
			return
		}

		finishLogin(c, carts, user.ID, cfg.Production)

		jwtToken, err := IssueJWT(cfg.JWTSecret, user.ID, user.Email, user.Role, user.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Ocurrió un error, intentá nuevamente"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Sesión iniciada", "token": jwtToken, "user": user})
	}
}
