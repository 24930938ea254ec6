package middleware

import (
	"errors"
	"strings"

	"github.com/devopsenabler/identity-core/internal/pkg/denylist"
	"github.com/devopsenabler/identity-core/internal/pkg/jwt"
	"github.com/devopsenabler/identity-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	ContextKeySubject = "auth_subject"
	ContextKeyClaims  = "auth_claims"
)

// Auth returns a middleware that enforces bearer-token authentication.
// The check sequence is fixed: extract, verify signature and expiry, then
// consult the denylist. Any failure ends the request.
func Auth(codec *jwt.Codec, dl *denylist.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "authorization token is required")
			return
		}

		claims, err := codec.Parse(token)
		if err != nil {
			response.Unauthorized(c, verifyFailureMessage(err))
			return
		}

		revoked, err := dl.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if revoked {
			response.Unauthorized(c, "token has been revoked")
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

func verifyFailureMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return "token is expired"
	case errors.Is(err, jwt.ErrInvalidSignature):
		return "token signature is invalid"
	default:
		return "token is malformed"
	}
}

// CurrentSubject extracts the authenticated identity from context.
func CurrentSubject(c *gin.Context) string {
	v, _ := c.Get(ContextKeySubject)
	subject, _ := v.(string)
	return subject
}

// CurrentClaims extracts the verified token claims from context.
func CurrentClaims(c *gin.Context) *jwt.Claims {
	v, _ := c.Get(ContextKeyClaims)
	claims, _ := v.(*jwt.Claims)
	return claims
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
