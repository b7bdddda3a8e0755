package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Validation failure kinds. Callers surface a single generic 401; the kinds
// exist so diagnostics can say which check failed without logging the token.
var (
	ErrMalformed     = errors.New("token is malformed")
	ErrSignature     = errors.New("token signature is invalid")
	ErrExpired       = errors.New("token is expired")
	ErrClaimMismatch = errors.New("token issuer or audience mismatch")
	ErrInvalid       = errors.New("token is invalid")
)

// Validator verifies token signatures and standard claims.
type Validator struct {
	secret   []byte
	issuer   string
	audience string
}

func NewValidator(cfg Config) *Validator {
	return &Validator{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// Validate verifies the signature, signing method, issuer, audience, and
// expiry of the token, and returns its claims. The returned error wraps one
// of the failure kinds above.
func (v *Validator) Validate(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, v.keyFunc,
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, classify(err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrMalformed)
	}
	return claims, nil
}

// ExtractUserID returns the subject claim. It re-runs full validation so an
// expired or tampered token is never partially trusted.
func (v *Validator) ExtractUserID(tokenString string) (string, error) {
	claims, err := v.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractRole returns the role claim after full validation.
func (v *Validator) ExtractRole(tokenString string) (string, error) {
	claims, err := v.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// ExtractEmail returns the email claim after full validation.
func (v *Validator) ExtractEmail(tokenString string) (string, error) {
	claims, err := v.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

// ExtractUserType returns the userType claim after full validation.
func (v *Validator) ExtractUserType(tokenString string) (string, error) {
	claims, err := v.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserType, nil
}

func (v *Validator) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return v.secret, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrSignature, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %w", ErrClaimMismatch, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
}
