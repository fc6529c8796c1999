package app

import (
	"github.com/gorilla/mux"
	"github.com/pennyplan/pennyplan/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Budget lifecycle
	r.HandleFunc("/api/budget/current", deps.BudgetHandler.GetCurrent).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.Initialize).Methods("POST")
	r.HandleFunc("/api/budget/reload", deps.BudgetHandler.Reload).Methods("POST")
	r.HandleFunc("/api/budget/rollover", deps.BudgetHandler.PrepareRollover).Methods("POST")

	// Budget items
	r.HandleFunc("/api/budget/item", deps.ItemHandler.CreateItem).Methods("POST")
	r.HandleFunc("/api/budget/item/{itemId}", deps.ItemHandler.UpdateItem).Methods("PUT")
	r.HandleFunc("/api/budget/item/{itemId}", deps.ItemHandler.DeleteItem).Methods("DELETE")
	r.HandleFunc("/api/budget/item/{itemId}/flags", deps.ItemHandler.SetFlags).Methods("PATCH")
	r.HandleFunc("/api/budget/item/{itemId}/deadline", deps.ItemHandler.SetDeadline).Methods("PUT")
	r.HandleFunc("/api/budget/item/{itemId}/guards", deps.ItemHandler.CheckGuards).Queries("amount", "{amount}").Methods("GET")

	// Sub-items
	r.HandleFunc("/api/budget/item/{itemId}/subitem", deps.ItemHandler.CreateSubItem).Methods("POST")
	r.HandleFunc("/api/budget/item/{itemId}/subitem/{subItemId}", deps.ItemHandler.UpdateSubItem).Methods("PUT")
	r.HandleFunc("/api/budget/item/{itemId}/subitem/{subItemId}", deps.ItemHandler.DeleteSubItem).Methods("DELETE")

	// Expenses
	r.HandleFunc("/api/expense", deps.ExpenseHandler.Record).Methods("POST")
	r.HandleFunc("/api/expense", deps.ExpenseHandler.ListForItem).Queries("itemId", "{itemId}").Methods("GET")

	// Income
	r.HandleFunc("/api/income", deps.IncomeHandler.Create).Methods("POST")
	r.HandleFunc("/api/income", deps.IncomeHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/income/total", deps.IncomeHandler.Total).Methods("GET")
	r.HandleFunc("/api/income/{entryId}", deps.IncomeHandler.Delete).Methods("DELETE")

	// Stats
	r.HandleFunc("/api/stats/summary", deps.StatsHandler.GetSummary).Methods("GET")

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/sheets/export", deps.GoogleHandler.ExportSummary).Methods("POST")
}
