// Package token issues and validates the signed bearer credentials that carry
// identity between the gateway and the identity service.
package token

import (
	"time"

	"github.com/corefellowship/backend/types"
	"github.com/golang-jwt/jwt/v5"
)

const signingMethod = "HS256"

// Claims is the identity payload embedded in every token. Downstream trust
// depends on subject, email, and role being present in every minted token.
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"`
	UserType    string `json:"userType"`
	FullName    string `json:"fullName,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
}

// Config holds the immutable signing parameters, loaded once at startup and
// passed explicitly so tests can use distinct keys.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Issuer mints signed tokens for authenticated users.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Mint creates a signed token carrying the user's identity claims.
func (i *Issuer) Mint(user types.User) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email:       user.Email,
		Role:        string(user.Role),
		UserType:    string(user.UserType),
		FullName:    user.FullName,
		CompanyName: user.CompanyName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
