package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"portex.io/warranty/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/healthz", handleHealth).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	RegisterWarrantyRoutes(api)
	RegisterClaimRoutes(api)
	RegisterNotificationRoutes(api)
	RegisterReportRoutes(api)

	return r
}

// handleHealth reports service liveness
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
	})
}
