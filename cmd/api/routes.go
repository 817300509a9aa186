package main

import (
	"net/http"

	httphandlers "centavo/internal/interfaces/http"
	"centavo/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", httphandlers.HandleHealth)

	mux.HandleFunc("/api/transactions", deps.TransactionHandler.HandleTransactions)
	mux.HandleFunc("/api/transactions/{id}", deps.TransactionHandler.HandleTransactionByID)

	var handler http.Handler = mux
	handler = middleware.Logging(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Telemetry(handler)

	return handler
}
