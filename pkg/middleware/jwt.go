package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrNoToken      = errors.New("no bearer token")
	ErrNoSubject    = errors.New("token has no subject")
	ErrInvalidToken = errors.New("authorization token invalid")
	ErrBadSubject   = errors.New("token subject can't be used as a user id")
)

// NewJWTMiddleware verifies HS256 bearer tokens issued by the auth
// provider and sets userID. Accounts are not looked up, the token is the
// session
func NewJWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr, err := tokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Not signed in",
				"requestID": requestID,
			})
			return
		}

		userID, err := ParseToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid or expired. Please log in again",
				"requestID": requestID,
			})

			zap.L().Debug("Rejected token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) (string, error) {
	h := c.GetHeader("Authorization")
	if h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
			return "", ErrNoToken
		}

		return strings.TrimSpace(tok), nil
	}

	tok, err := c.Cookie("auth_token")
	if err != nil || tok == "" {
		return "", ErrNoToken
	}

	return tok, nil
}

// ParseToken validates the signature and expiry and returns the user id
// stored in sub, or user_id for older tokens. The user id names the
// user's storage folder, so ids with path separators are rejected
func ParseToken(tokenStr string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w, %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	id, _ := claims.GetSubject()
	if id == "" {
		id, _ = claims["user_id"].(string)
	}

	if id == "" {
		return "", ErrNoSubject
	}

	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", ErrBadSubject
	}

	return id, nil
}
