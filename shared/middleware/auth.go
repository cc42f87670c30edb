package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDHeader carries the authenticated caller from the gateway to the
// services behind it. Service-to-service calls do not set it.
const UserIDHeader = "X-User-ID"

var (
	jwtSecretOnce sync.Once
	jwtSecretVal  []byte
)

// MustInitJWTSecret fixes the signing secret once at startup. It panics on an
// empty secret so a misconfigured service never starts.
func MustInitJWTSecret(secret string) {
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	jwtSecretOnce.Do(func() {
		jwtSecretVal = []byte(secret)
	})
}

func jwtSecret() []byte {
	return jwtSecretVal
}

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the bearer token and puts the caller's user id in
// the gin context. Orchestrators take identity from here only.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			RespondWithError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		secret := jwtSecret()
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

		if len(secret) == 0 || err != nil || !token.Valid || claims.UserID == "" {
			RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}
