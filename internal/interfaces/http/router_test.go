package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/epp"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/loans"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/application/requisition"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildRouterApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P1", CompanyID: testCompanyID, SKU: "CEM-50", Name: "Cemento"}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "W1", CompanyID: testCompanyID, Name: "Principal"}))

	registry := prometheus.NewRegistry()
	movements := inventory.NewMovementUseCase(store, repos.Movements, repos.Stock, repos.Kardex, inventory.Options{}, zerolog.Nop()).
		WithMetrics(metrics.NewInventoryMetrics(registry))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:    usecase.NewWarehouseUseCase(repos.Warehouses),
		ProductUC:      usecase.NewProductUseCase(repos.Products),
		Movements:      movements,
		Replenishment:  inventory.NewReplenishmentUseCase(repos.Stock, repos.Products),
		Purchasing:     purchasing.NewUseCase(movements, repos.PurchaseOrders, zerolog.Nop()),
		Requisitions:   requisition.NewUseCase(movements, repos.Requisitions, repos.ExitVouchers, zerolog.Nop()),
		Epp:            epp.NewUseCase(movements, repos.EppIssuances, zerolog.Nop()),
		Loans:          loans.NewUseCase(movements, repos.Loans, zerolog.Nop()),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Tokens:         testVerifier(t),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func entry(qty, cost string) map[string]any {
	return map[string]any{
		"type":              "ENTRY",
		"dest_warehouse_id": "W1",
		"lines":             []map[string]any{{"product_id": "P1", "quantity": qty, "unit_cost": cost}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_MovimientosYSaldo(t *testing.T) {
	app := buildRouterApp(t)

	status, body := call(t, app, http.MethodPost, "/api/inventory/movements", "almacenista", entry("10", "100"))
	require.Equal(t, http.StatusCreated, status, body)
	assert.Regexp(t, `^ENT-\d{6}-000001$`, body["number"])
	assert.Equal(t, "COMPLETED", body["status"])

	status, _ = call(t, app, http.MethodPost, "/api/inventory/movements", "almacenista", entry("10", "200"))
	require.Equal(t, http.StatusCreated, status)

	status, body = call(t, app, http.MethodGet, "/api/inventory/balances/W1/P1", "auditor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "20", body["quantity"])
	assert.Equal(t, "150", body["unit_cost"])

	status, body = call(t, app, http.MethodGet, "/api/inventory/kardex?product_id=P1&warehouse_id=W1", "auditor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["total"])
}

func TestRouter_SalidaSinStock_422(t *testing.T) {
	app := buildRouterApp(t)

	status, body := call(t, app, http.MethodPost, "/api/inventory/movements", "admin", map[string]any{
		"type":                "EXIT",
		"source_warehouse_id": "W1",
		"lines":               []map[string]any{{"product_id": "P1", "quantity": "1"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
}

func TestRouter_ValidacionYRoles(t *testing.T) {
	app := buildRouterApp(t)

	status, body := call(t, app, http.MethodPost, "/api/inventory/movements", "admin", map[string]any{"type": "ENTRY"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = call(t, app, http.MethodPost, "/api/inventory/movements", "auditor", entry("1", "1"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, _ = call(t, app, http.MethodGet, "/api/inventory/movements/no-existe", "auditor", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_AnulacionSoloAdmin(t *testing.T) {
	app := buildRouterApp(t)

	_, created := call(t, app, http.MethodPost, "/api/inventory/movements", "almacenista", entry("5", "10"))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	status, _ := call(t, app, http.MethodPost, "/api/inventory/movements/"+id+"/void", "almacenista", map[string]any{"reason": "error"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPost, "/api/inventory/movements/"+id+"/void", "admin", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status, "el motivo es obligatorio")
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = call(t, app, http.MethodPost, "/api/inventory/movements/"+id+"/void", "admin", map[string]any{"reason": "digitado dos veces"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "VOIDED", body["status"])

	status, body = call(t, app, http.MethodPost, "/api/inventory/movements/"+id+"/void", "admin", map[string]any{"reason": "otra vez"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE", body["code"])
}

func TestRouter_PrestamoYDevolucion(t *testing.T) {
	app := buildRouterApp(t)
	status, _ := call(t, app, http.MethodPost, "/api/inventory/movements", "almacenista", entry("4", "50"))
	require.Equal(t, http.StatusCreated, status)

	status, body := call(t, app, http.MethodPost, "/api/loans", "almacenista", map[string]any{
		"warehouse_id": "W1",
		"borrower":     map[string]any{"kind": "WORKER", "id": "CC-77"},
		"lines":        []map[string]any{{"product_id": "P1", "quantity": "2"}},
	})
	require.Equal(t, http.StatusCreated, status, body)
	doc, _ := body["document"].(map[string]any)
	require.NotNil(t, doc)
	loanID, _ := doc["id"].(string)

	status, body = call(t, app, http.MethodPost, "/api/loans/"+loanID+"/returns", "almacenista", nil)
	require.Equal(t, http.StatusCreated, status, body)
	doc, _ = body["document"].(map[string]any)
	assert.Equal(t, "RETURNED", doc["status"])
}

func TestRouter_PaginacionMovimientos(t *testing.T) {
	app := buildRouterApp(t)
	for i := 0; i < 3; i++ {
		status, _ := call(t, app, http.MethodPost, "/api/inventory/movements", "almacenista", entry("1", "10"))
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := call(t, app, http.MethodGet, "/api/inventory/movements?limit=2", "auditor", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, map[string]any{"limit": float64(2), "offset": float64(0), "has_more": true}, body["page"])

	status, body = call(t, app, http.MethodGet, "/api/inventory/movements?limit=2&offset=2", "auditor", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["items"], 1)
	assert.Equal(t, false, body["page"].(map[string]any)["has_more"])

	status, body = call(t, app, http.MethodGet, "/api/products?limit=500", "auditor", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(100), body["page"].(map[string]any)["limit"])
}

func TestRouter_Metrics(t *testing.T) {
	app := buildRouterApp(t)
	status, _ := call(t, app, http.MethodPost, "/api/inventory/movements", "almacenista", entry("1", "1"))
	require.Equal(t, http.StatusCreated, status)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `almacen_movements_total{subtype="manual",type="ENTRY"} 1`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentación
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_TodasLasRutasDocumentadas(t *testing.T) {
	raw, err := os.ReadFile("../../../docs/swagger.json")
	require.NoError(t, err)
	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	param := regexp.MustCompile(`:(\w+)`)
	app := buildRouterApp(t)
	checked := 0
	for _, route := range app.GetRoutes(true) {
		if !strings.HasPrefix(route.Path, "/api/") {
			continue
		}
		method := strings.ToLower(route.Method)
		if method != "get" && method != "post" && method != "put" {
			continue
		}
		path := strings.TrimSuffix(strings.ReplaceAll(route.Path, "//", "/"), "/")
		path = param.ReplaceAllString(path, "{$1}")
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "ruta sin documentar: %s", path) {
			_, ok = ops[method]
			assert.True(t, ok, "método sin documentar: %s %s", route.Method, path)
		}
		checked++
	}
	assert.GreaterOrEqual(t, checked, 30)
}
