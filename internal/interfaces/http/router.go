package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/almacen-api/internal/application/epp"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/loans"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/application/requisition"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC    *usecase.WarehouseUseCase
	ProductUC      *usecase.ProductUseCase
	Movements      *inventory.MovementUseCase
	Replenishment  *inventory.ReplenishmentUseCase
	Purchasing     *purchasing.UseCase
	Requisitions   *requisition.UseCase
	Epp            *epp.UseCase
	Loans          *loans.UseCase
	Balances       BalanceReader // opcional
	MetricsHandler nethttp.Handler
	Tokens         *jwt.Verifier
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.Tokens))
	read := RequireRole(RoleAdmin, RoleAlmacenista, RoleAuditor)
	write := RequireRole(RoleAdmin, RoleAlmacenista)
	admin := RequireRole(RoleAdmin)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", admin, warehouseHandler.Create)
	warehouses.Get("/", read, warehouseHandler.List)
	warehouses.Get("/:id", read, warehouseHandler.GetByID)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", admin, productHandler.Create)
	products.Get("/", read, productHandler.List)
	products.Get("/:id", read, productHandler.GetByID)

	// Inventory: movimientos, kardex y saldos
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.Replenishment, deps.Balances)
	inv.Post("/movements", write, inventoryHandler.CreateMovement)
	inv.Get("/movements", read, inventoryHandler.ListMovements)
	inv.Get("/movements/:id", read, inventoryHandler.GetMovement)
	inv.Post("/movements/:id/confirm", write, inventoryHandler.ConfirmTransfer)
	inv.Post("/movements/:id/void", admin, inventoryHandler.VoidMovement)
	inv.Get("/kardex", read, inventoryHandler.Kardex)
	inv.Get("/balances", read, inventoryHandler.ListBalances)
	inv.Get("/balances/:warehouse_id/:product_id", read, inventoryHandler.GetBalance)
	inv.Put("/balances/:warehouse_id/:product_id/limits", admin, inventoryHandler.SetStockLimits)
	inv.Get("/replenishment-list", read, inventoryHandler.GetReplenishmentList)

	// Compras
	purchasingHandler := NewPurchasingHandler(deps.Purchasing)
	orders := protected.Group("/purchase-orders")
	orders.Post("/", write, purchasingHandler.CreateOrder)
	orders.Get("/:id", read, purchasingHandler.GetOrder)
	orders.Post("/:id/approve", admin, purchasingHandler.ApproveOrder)
	orders.Post("/:id/receipts", write, purchasingHandler.Receive)
	protected.Post("/quotations", write, purchasingHandler.CreateQuotation)

	// Requisiciones y vales de salida
	requisitionHandler := NewRequisitionHandler(deps.Requisitions)
	reqs := protected.Group("/requisitions")
	reqs.Post("/", write, requisitionHandler.Create)
	reqs.Get("/:id", read, requisitionHandler.Get)
	reqs.Post("/:id/approve", admin, requisitionHandler.Approve)
	reqs.Post("/:id/reject", admin, requisitionHandler.Reject)
	reqs.Post("/:id/vouchers", write, requisitionHandler.CreateVoucher)
	vouchers := protected.Group("/exit-vouchers")
	vouchers.Get("/:id", read, requisitionHandler.GetVoucher)
	vouchers.Post("/:id/deliveries", write, requisitionHandler.Deliver)

	// EPP
	eppHandler := NewEppHandler(deps.Epp)
	eppGroup := protected.Group("/epp")
	eppGroup.Post("/issuances", write, eppHandler.Issue)
	eppGroup.Post("/issuances/:id/renewals", write, eppHandler.Renew)
	eppGroup.Get("/workers/:worker_id/issuances", read, eppHandler.History)

	// Préstamos
	loanHandler := NewLoanHandler(deps.Loans)
	loanGroup := protected.Group("/loans")
	loanGroup.Post("/", write, loanHandler.Lend)
	loanGroup.Get("/:id", read, loanHandler.Get)
	loanGroup.Post("/:id/returns", write, loanHandler.Return)
}
