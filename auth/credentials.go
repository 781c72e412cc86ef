package auth

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/cart"
	"github.com/darccuir/storefront-api/config"
	"github.com/darccuir/storefront-api/mailer"
	"github.com/darccuir/storefront-api/models"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/register
func Register(db *gorm.DB, carts *cart.Service, mail *mailer.Mailer, cfg config.Config, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Datos inválidos"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(input.Email))

		var existing models.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "message": "Ya existe una cuenta con ese email"})
			return
		} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Ocurrió un error, intentá nuevamente"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Ocurrió un error, intentá nuevamente"})
			return
		}

		user := models.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: string(hash),
			Name:         input.Name,
			Phone:        input.Phone,
			Provider:     "credentials",
			Role:         models.RoleUser,
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "No pudimos crear la cuenta"})
			return
		}

		// A guest who registers mid-shopping keeps their cart.
		finishLogin(c, carts, user.ID, cfg.Production)

		go func() {
			if err := mail.SendWelcome(user.Email, user.Name); err != nil {
				log.WithError(err).Warn("welcome mail failed")
			}
		}()

		token, err := IssueJWT(cfg.JWTSecret, user.ID, user.Email, user.Role, user.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Ocurrió un error, intentá nuevamente"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Cuenta creada", "token": token, "user": user})
	}
}

// POST /auth/login
func Login(db *gorm.DB, carts *cart.Service, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Datos inválidos"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(input.Email))

		var user models.User
		if err := db.Where("email = ? AND provider = ?", email, "credentials").First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Credenciales inválidas"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Credenciales inválidas"})
			return
		}

		finishLogin(c, carts, user.ID, cfg.Production)

		token, err := IssueJWT(cfg.JWTSecret, user.ID, user.Email, user.Role, user.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Ocurrió un error, intentá nuevamente"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Sesión iniciada", "token": token, "user": user})
	}
}

// finishLogin runs the one-time cart reconciliation for a fresh
// authentication. The merge is fail-open (MergeAtLogin logs and swallows) and
// the anonymous cookie is cleared unconditionally: whatever happened to the
// guest cart, the token must not outlive the login.
func finishLogin(c *gin.Context, carts *cart.Service, userID string, secure bool) {
	if token := ReadSessionCookie(c); token != "" {
		carts.MergeAtLogin(userID, token)
		ClearSessionCookie(c, secure)
	}
}
