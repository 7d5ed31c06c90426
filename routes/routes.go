package routes

import (
	"database/sql"

	"github.com/hogarapp/gastos-api/handlers"
	"github.com/hogarapp/gastos-api/services"

	"github.com/gin-gonic/gin"
)

// SetupTransactionRoutes wires manual entry, editing and statement import.
func SetupTransactionRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	categories := services.NewCategoryLookup(db)
	transactionService := services.NewTransactionService(db, categories)

	h := handlers.NewTransactionHandler(transactionService, ws)

	rg.POST("/transactions", h.CreateTransaction)
	rg.GET("/transactions", h.ListTransactions)
	rg.PUT("/transactions/:id", h.UpdateTransaction)
	rg.DELETE("/transactions/:id", h.DeleteTransaction)
	rg.POST("/transactions/import", h.ImportTransactions)
}

// SetupReconciliationRoutes wires statement reconciliation.
func SetupReconciliationRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	categories := services.NewCategoryLookup(db)
	transactionService := services.NewTransactionService(db, categories)
	reconciler := services.NewReconcilerService(db, transactionService, categories, ws)

	h := handlers.NewReconciliationHandler(reconciler)

	rg.POST("/reconciliation/:month/run", h.RunReconciliation)
	rg.POST("/reconciliation/:month/apply-defaults", h.ApplyDefaults)
	rg.POST("/reconciliation/resolve", h.Resolve)
}

// SetupProjectionRoutes wires installment obligations, projections and the
// affordability simulator, plus the planning inputs they consume.
func SetupProjectionRoutes(rg *gin.RouterGroup, db *sql.DB) {
	transactionService := services.NewTransactionService(db, services.NewCategoryLookup(db))
	installmentService := services.NewInstallmentService(transactionService)
	projectionService := services.NewProjectionService(db, transactionService, installmentService)

	ph := handlers.NewProjectionHandler(projectionService, installmentService)
	rg.GET("/obligations", ph.GetObligations)
	rg.GET("/projection", ph.GetProjection)
	rg.POST("/projection/simulate", ph.Simulate)

	plh := handlers.NewPlanningHandler(projectionService)
	rg.GET("/recurring-charges", plh.ListRecurring)
	rg.POST("/recurring-charges", plh.CreateRecurring)
	rg.DELETE("/recurring-charges/:id", plh.DeleteRecurring)
	rg.GET("/planned-purchases", plh.ListPlanned)
	rg.POST("/planned-purchases", plh.CreatePlanned)
	rg.DELETE("/planned-purchases/:id", plh.DeletePlanned)
}
