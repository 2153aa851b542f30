package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/pkg/jwt"
)

const secret = "s3cr3t"

func sign(t *testing.T, method gojwt.SigningMethod, key any, claims gojwt.MapClaims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func valid(extra gojwt.MapClaims) gojwt.MapClaims {
	c := gojwt.MapClaims{
		"iss":        "idp",
		"sub":        "U1",
		"company_id": "T1",
		"role":       "almacenista",
		"exp":        time.Now().Add(5 * time.Minute).Unix(),
	}
	for k, v := range extra {
		if v == nil {
			delete(c, k)
			continue
		}
		c[k] = v
	}
	return c
}

func TestVerify_Identidad(t *testing.T) {
	v, err := jwt.NewVerifier(secret, "idp", 0)
	require.NoError(t, err)

	id, err := v.Verify(sign(t, gojwt.SigningMethodHS256, []byte(secret), valid(nil)))
	require.NoError(t, err)
	assert.Equal(t, jwt.Identity{UserID: "U1", CompanyID: "T1", Role: "almacenista"}, id)

	// user_id tiene prioridad sobre sub
	id, err = v.Verify(sign(t, gojwt.SigningMethodHS384, []byte(secret), valid(gojwt.MapClaims{"user_id": "U9"})))
	require.NoError(t, err)
	assert.Equal(t, "U9", id.UserID)
}

func TestVerify_Rechazos(t *testing.T) {
	v, err := jwt.NewVerifier(secret, "idp", 0)
	require.NoError(t, err)

	cases := map[string]struct {
		token string
		is    error
	}{
		"otro emisor":   {token: sign(t, gojwt.SigningMethodHS256, []byte(secret), valid(gojwt.MapClaims{"iss": "otro"})), is: gojwt.ErrTokenInvalidIssuer},
		"expirado":      {token: sign(t, gojwt.SigningMethodHS256, []byte(secret), valid(gojwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})), is: gojwt.ErrTokenExpired},
		"sin exp":       {token: sign(t, gojwt.SigningMethodHS256, []byte(secret), valid(gojwt.MapClaims{"exp": nil})), is: gojwt.ErrTokenRequiredClaimMissing},
		"otra firma":    {token: sign(t, gojwt.SigningMethodHS256, []byte("otro"), valid(nil)), is: gojwt.ErrTokenSignatureInvalid},
		"sin empresa":   {token: sign(t, gojwt.SigningMethodHS256, []byte(secret), valid(gojwt.MapClaims{"company_id": nil})), is: jwt.ErrMissingCompany},
		"sin usuario":   {token: sign(t, gojwt.SigningMethodHS256, []byte(secret), valid(gojwt.MapClaims{"sub": nil})), is: jwt.ErrMissingUser},
		"alg none":      {token: sign(t, gojwt.SigningMethodNone, gojwt.UnsafeAllowNoneSignatureType, valid(nil))},
		"malformado":    {token: "token.invalido.aqui"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tc.token)
			require.Error(t, err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestVerify_Tolerancia(t *testing.T) {
	tok := sign(t, gojwt.SigningMethodHS256, []byte(secret), valid(gojwt.MapClaims{"exp": time.Now().Add(-10 * time.Second).Unix()}))

	strict, err := jwt.NewVerifier(secret, "", 0)
	require.NoError(t, err)
	_, err = strict.Verify(tok)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)

	lenient, err := jwt.NewVerifier(secret, "", time.Minute)
	require.NoError(t, err)
	_, err = lenient.Verify(tok)
	assert.NoError(t, err)
}

func TestNewVerifier_SecretVacio(t *testing.T) {
	_, err := jwt.NewVerifier("", "idp", 0)
	require.Error(t, err)
}
