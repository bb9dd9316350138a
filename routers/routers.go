package routers

import (
	"crowdfund-sync/handlers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the HTTP routes of the presentation boundary
func RegisterRoutes(r *mux.Router, h *handlers.Handler) {

	// Forces a full resynchronization of the campaign snapshot
	r.HandleFunc("/campaigns/refresh", h.RefreshCampaigns).Methods("POST")

	// The cached campaign snapshot with derived lifecycle state
	r.HandleFunc("/campaigns", h.ListCampaigns).Methods("GET")

	// Submits a campaign-creation transaction and resyncs
	r.HandleFunc("/campaigns", h.CreateCampaign).Methods("POST")

	// One campaign plus its session annotations
	r.HandleFunc("/campaigns/{id}", h.GetCampaign).Methods("GET")

	// Submits a fixed-amount contribution and resyncs
	r.HandleFunc("/campaigns/{id}/contributions", h.Contribute).Methods("POST")

	// Session-scoped updates, admin capability required to add
	r.HandleFunc("/campaigns/{id}/updates", h.ListUpdates).Methods("GET")
	r.HandleFunc("/campaigns/{id}/updates", h.AddUpdate).Methods("POST")

	// Session-scoped comments, open to any caller
	r.HandleFunc("/campaigns/{id}/comments", h.ListComments).Methods("GET")
	r.HandleFunc("/campaigns/{id}/comments", h.AddComment).Methods("POST")
}
