// Package auth issues and verifies the HS256 access tokens that user-service
// hands out at login, and guards routes by role.
package auth

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	ClaimsKey = "auth_claims"

	DefaultTTL = 24 * time.Hour
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(userID uint, email, role string) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(tokenStr string) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, fmt.Errorf("JWT secret not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	return claims, nil
}

// RequireRole admits requests bearing a valid token with the given role.
func RequireRole(t *Tokens, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" || t == nil {
			apperrors.Respond(c, apperrors.New(apperrors.KindUnauthorized, "Unauthorized", nil))
			return
		}
		claims, err := t.Parse(raw)
		if err != nil {
			apperrors.Respond(c, apperrors.New(apperrors.KindUnauthorized, "Unauthorized", err))
			return
		}
		if claims.Role != role {
			apperrors.Respond(c, apperrors.New(apperrors.KindForbidden, "Forbidden", nil))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
