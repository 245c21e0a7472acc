// Package auth guards the admin API with bearer tokens and the admin policy.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/policy"
)

// ContextKeyEmail is the echo context key holding the caller's email.
const ContextKeyEmail = "admin_email"

// Claims are the token claims the admin API understands.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authorizer decides whether a caller may perform a request.
type Authorizer interface {
	Evaluate(ctx context.Context, input policy.Input) (string, error)
}

// Validator verifies HS256 admin tokens and asks the Authorizer for a decision.
type Validator struct {
	secret  []byte
	authz   Authorizer
	admins  []string
	editors []string
	log     zerolog.Logger
}

// NewValidator creates a Validator. An empty secret disables the admin API.
func NewValidator(secret string, authz Authorizer, admins, editors []string, log zerolog.Logger) *Validator {
	return &Validator{
		secret:  []byte(secret),
		authz:   authz,
		admins:  admins,
		editors: editors,
		log:     log,
	}
}

// Middleware enforces token verification and the admin policy.
func (v *Validator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(v.secret) == 0 {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "admin access is not configured"})
			}

			tokenString := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			claims, err := v.Parse(tokenString)
			if err != nil {
				v.log.Debug().Err(err).Msg("admin token rejected")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			decision, err := v.authz.Evaluate(c.Request().Context(), policy.Input{
				Email:   claims.Email,
				Method:  c.Request().Method,
				Path:    c.Path(),
				Admins:  v.admins,
				Editors: v.editors,
			})
			if err != nil {
				v.log.Error().Err(err).Msg("admin policy evaluation failed")
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "authorization failed"})
			}
			if decision != policy.DecisionAllow {
				v.log.Warn().Str("email", claims.Email).Str("method", c.Request().Method).Str("path", c.Path()).Msg("admin request denied")
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}

			c.Set(ContextKeyEmail, claims.Email)
			return next(c)
		}
	}
}

// Parse verifies a token string and returns its claims.
func (v *Validator) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, errors.New("token has no email claim")
	}
	return claims, nil
}

// IssueToken signs an operator token for email valid for ttl.
func IssueToken(secret, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("secret is required")
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
