package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"portex.io/warranty/handlers"
	"portex.io/warranty/middleware"
)

// RegisterWarrantyRoutes registers warranty registry routes
func RegisterWarrantyRoutes(api *mux.Router) {
	h := handlers.NewWarrantyHandler()

	// Warranty creation is driven from the client and CSR portals.
	api.Handle("/warranties",
		middleware.RequireRole([]string{"client", "csr"},
			http.HandlerFunc(h.CreateWarranty))).Methods("POST")
	api.HandleFunc("/warranties", h.GetWarranties).Methods("GET")
	api.HandleFunc("/warranties/{id}", h.GetWarranty).Methods("GET")

	// Creation-intent support: which items can still be warrantied.
	api.HandleFunc("/projects/{projectId}/available-items", h.GetAvailableItems).Methods("POST")
}

// RegisterClaimRoutes registers claim workflow routes
func RegisterClaimRoutes(api *mux.Router) {
	h := handlers.NewClaimHandler()

	api.Handle("/claims",
		middleware.RequireRole([]string{"client"},
			http.HandlerFunc(h.FileClaim))).Methods("POST")
	api.HandleFunc("/claims", h.GetClaims).Methods("GET")
	api.HandleFunc("/claims/{id}", h.GetClaim).Methods("GET")

	// Adjudication is a finance-portal concern.
	api.Handle("/claims/{id}/review",
		middleware.RequireRole([]string{"finance"},
			http.HandlerFunc(h.MarkUnderReview))).Methods("POST")
	api.Handle("/claims/{id}/approve",
		middleware.RequireRole([]string{"finance"},
			http.HandlerFunc(h.ApproveClaim))).Methods("POST")
	api.Handle("/claims/{id}/reject",
		middleware.RequireRole([]string{"finance"},
			http.HandlerFunc(h.RejectClaim))).Methods("POST")

	// Replacement confirmation comes from the warehouse portal.
	api.Handle("/claims/{id}/replaced",
		middleware.RequireRole([]string{"warehouse", "finance"},
			http.HandlerFunc(h.ConfirmReplacement))).Methods("POST")
}

// RegisterNotificationRoutes registers in-app notification routes
func RegisterNotificationRoutes(api *mux.Router) {
	h := &handlers.NotificationHandler{}

	api.HandleFunc("/notifications", h.GetNotifications).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods("POST")
}

// RegisterReportRoutes registers finance reporting routes
func RegisterReportRoutes(api *mux.Router) {
	api.Handle("/reports/warranties/export",
		middleware.RequireRole([]string{"finance"},
			http.HandlerFunc(handlers.ExportWarrantyRegister))).Methods("GET")
}
