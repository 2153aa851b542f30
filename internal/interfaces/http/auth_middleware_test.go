package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/almacen-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "https://idp.almacen.test/"
)

func testVerifier(t *testing.T) *pkgjwt.Verifier {
	t.Helper()
	v, err := pkgjwt.NewVerifier(testJWTSecret, testIssuer, 0)
	require.NoError(t, err)
	return v
}

// signClaims firma como lo haría el proveedor de identidad. Un valor nil quita el claim.
func signClaims(t *testing.T, override gojwt.MapClaims) string {
	t.Helper()
	claims := gojwt.MapClaims{
		"iss":        testIssuer,
		"sub":        testUserID,
		"company_id": testCompanyID,
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range override {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

// tokenForRole genera un JWT válido con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return signClaims(t, gojwt.MapClaims{"role": role})
}

// buildTestApp monta AuthMiddleware + RequireRole delante de un handler que devuelve la identidad.
func buildTestApp(t *testing.T, allowedRoles ...string) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testVerifier(t)),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":    apphttp.GetUserID(c),
				"company_id": apphttp.GetCompanyID(c),
				"role":       apphttp.GetRole(c),
			})
		},
	)
	return app
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	body := map[string]string{}
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CargaIdentidadDelToken(t *testing.T) {
	app := buildTestApp(t, apphttp.RoleAuditor)

	status, body := doRequest(t, app, tokenForRole(t, apphttp.RoleAuditor))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, testUserID, body["user_id"], "sin user_id se toma sub")
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, apphttp.RoleAuditor, body["role"])

	// user_id explícito gana sobre sub; el esquema no distingue mayúsculas
	status, body = doRequest(t, app, "bearer"+signClaims(t, gojwt.MapClaims{"role": apphttp.RoleAuditor, "user_id": "U-42"})[len("Bearer"):])
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "U-42", body["user_id"])
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	app := buildTestApp(t, apphttp.RoleAdmin)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema Basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"otro emisor", signClaims(t, gojwt.MapClaims{"role": "admin", "iss": "https://otro-idp/"}), "INVALID_TOKEN"},
		{"expirado", signClaims(t, gojwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}), "INVALID_TOKEN"},
		{"sin empresa", signClaims(t, gojwt.MapClaims{"role": "admin", "company_id": nil}), "MISSING_TENANT"},
		{"sin usuario", signClaims(t, gojwt.MapClaims{"role": "admin", "sub": nil}), "MISSING_TENANT"},
		{"sin rol", signClaims(t, nil), "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doRequest(t, app, tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole: matriz de los grupos que usa el router
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_Matriz(t *testing.T) {
	groups := map[string][]string{
		"lectura":   {apphttp.RoleAdmin, apphttp.RoleAlmacenista, apphttp.RoleAuditor},
		"escritura": {apphttp.RoleAdmin, apphttp.RoleAlmacenista},
		"admin":     {apphttp.RoleAdmin},
	}
	allowed := map[string]map[string]bool{
		"lectura":   {apphttp.RoleAdmin: true, apphttp.RoleAlmacenista: true, apphttp.RoleAuditor: true},
		"escritura": {apphttp.RoleAdmin: true, apphttp.RoleAlmacenista: true},
		"admin":     {apphttp.RoleAdmin: true},
	}
	roles := []string{apphttp.RoleAdmin, apphttp.RoleAlmacenista, apphttp.RoleAuditor, "vendedor"}

	for group, groupRoles := range groups {
		app := buildTestApp(t, groupRoles...)
		for _, role := range roles {
			t.Run(group+"/"+role, func(t *testing.T) {
				status, body := doRequest(t, app, tokenForRole(t, role))
				if allowed[group][role] {
					assert.Equal(t, http.StatusOK, status, body)
					return
				}
				assert.Equal(t, http.StatusForbidden, status)
				assert.Equal(t, "FORBIDDEN", body["code"])
			})
		}
	}
}
