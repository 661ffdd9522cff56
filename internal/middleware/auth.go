package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"moodr-backend/internal/config"
	"moodr-backend/internal/models"
)

const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
)

// Auth validates the Bearer token and stores the caller identity in the
// gin context. Identity is external; the token's "sub" claim is the user
// id and an optional "username" claim carries the display name used for
// lazy user creation.
func Auth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, ok := parseToken(c, cfg)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid or missing token"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UsernameKey, username)
		c.Next()
	}
}

// OptionalAuth populates the caller identity when a valid token is
// present but never rejects the request. Public endpoints use it to give
// owners a richer view of their own projects.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, username, ok := parseToken(c, cfg); ok {
			c.Set(UserIDKey, userID)
			c.Set(UsernameKey, username)
		}
		c.Next()
	}
}

func parseToken(c *gin.Context, cfg *config.Config) (userID, username string, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "", false
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		if cfg.JWTSecret == "" {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", false
	}

	name, _ := claims["username"].(string)
	return sub, name, true
}
