// Package jwt valida los tokens que emite el proveedor de identidad.
// La API no emite tokens propios.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingUser    = errors.New("jwt: token sin usuario")
	ErrMissingCompany = errors.New("jwt: token sin empresa")
)

// Identity es lo que la API toma del token para operar el almacén.
type Identity struct {
	UserID    string
	CompanyID string
	Role      string // vacío en tokens heredados; RequireRole lo rechaza
}

type claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Verifier comprueba firma HMAC, expiración y emisor.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier arma el verificador. issuer vacío acepta cualquier emisor.
func NewVerifier(secret, issuer string, leeway time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}, nil
}

// Verify valida el token y devuelve la identidad. El usuario sale de user_id o, si falta, de sub.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	var c claims
	if _, err := v.parser.ParseWithClaims(tokenString, &c, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}); err != nil {
		return Identity{}, err
	}
	id := Identity{UserID: c.UserID, CompanyID: c.CompanyID, Role: c.Role}
	if id.UserID == "" {
		id.UserID = c.Subject
	}
	switch {
	case id.UserID == "":
		return Identity{}, ErrMissingUser
	case id.CompanyID == "":
		return Identity{}, ErrMissingCompany
	}
	return id, nil
}
