package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cuongbtq/jobfeed/internal/api/handler"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig holds JWT verification settings
type AuthConfig struct {
	Secret    string
	Issuer    string
	AdminRole string
}

// Claims are the JWT claims issued to users and moderators
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var errMissingToken = errors.New("missing bearer token")

// IssueToken signs an HS256 token for subject with role
func IssueToken(cfg AuthConfig, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

func parseBearer(c *gin.Context, cfg AuthConfig) (*Claims, error) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return nil, errMissingToken
	}

	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("bearer token required")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// AdminAuthMiddleware requires a valid token carrying the admin role
func AdminAuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c, cfg)
		if err != nil {
			msg := "Invalid token"
			switch {
			case errors.Is(err, errMissingToken):
				msg = "Authorization header required"
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "Token expired"
			}
			abortJSON(c, http.StatusUnauthorized, msg)
			return
		}

		if claims.Role != cfg.AdminRole {
			abortJSON(c, http.StatusForbidden, "Admin role required")
			return
		}

		c.Set("moderator_id", claims.Subject)
		c.Next()
	}
}

// OptionalUserMiddleware sets the poster id when a valid token is sent.
// Anonymous requests pass through; a present but invalid token is rejected.
func OptionalUserMiddleware(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c, cfg)
		switch {
		case errors.Is(err, errMissingToken):
		case err != nil:
			abortJSON(c, http.StatusUnauthorized, "Invalid token")
			return
		default:
			c.Set(handler.PosterIDKey, claims.Subject)
		}
		c.Next()
	}
}

func abortJSON(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
