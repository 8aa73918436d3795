package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/farebox/printd/internal/store"
)

const (
	cookieName           = "printd_auth"
	tokenDuration        = 24 * time.Hour
	settingsKeyPassword  = "auth.admin_password"
	settingsKeyJWTSecret = "auth.jwt_secret"
)

type Claims struct {
	jwt.RegisteredClaims
	Authenticated bool `json:"authenticated"`
}

type AuthMiddleware struct {
	store  *store.Store
	secret []byte
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// New loads or generates the signing secret and, when no admin password
// hash is stored yet, bootstraps one from the config file.
func New(st *store.Store, bootstrapPassword string) (*AuthMiddleware, error) {
	secretHex, err := st.Get(settingsKeyJWTSecret)
	if err != nil {
		return nil, err
	}
	if secretHex == "" {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		secretHex = hex.EncodeToString(raw)
		if err := st.Set(settingsKeyJWTSecret, secretHex); err != nil {
			return nil, err
		}
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("decode jwt secret: %w", err)
	}

	storedHash, err := st.Get(settingsKeyPassword)
	if err != nil {
		return nil, err
	}
	if storedHash == "" && bootstrapPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(bootstrapPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		if err := st.Set(settingsKeyPassword, string(hash)); err != nil {
			return nil, err
		}
	}

	return &AuthMiddleware{store: st, secret: secret}, nil
}

func (a *AuthMiddleware) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	hash, err := a.store.Get(settingsKeyPassword)
	if err != nil || hash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin password not configured"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Authenticated: true,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.SetCookie(cookieName, token, int(tokenDuration.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (a *AuthMiddleware) Logout(c *gin.Context) {
	c.SetCookie(cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RequireAuth accepts the session cookie or a bearer token.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(cookieName)
		if err != nil || tokenString == "" {
			const prefix = "Bearer "
			header := c.GetHeader("Authorization")
			if len(header) > len(prefix) && header[:len(prefix)] == prefix {
				tokenString = header[len(prefix):]
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid || !claims.Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		c.Next()
	}
}
