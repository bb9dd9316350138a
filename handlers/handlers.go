package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"crowdfund-sync/annotations"
	"crowdfund-sync/chain"
	"crowdfund-sync/lifecycle"
	"crowdfund-sync/logger"
	"crowdfund-sync/models"
	"crowdfund-sync/registry"
	"crowdfund-sync/submit"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler contains the HTTP handlers forming the presentation boundary of
// the synchronization layer.
type Handler struct {
	Registry  *registry.Registry
	Submitter *submit.Submitter
	Store     *annotations.Store
	Account   models.Account
}

// NewHandler creates and returns a new Handler instance
func NewHandler(reg *registry.Registry, sub *submit.Submitter, store *annotations.Store, account models.Account) *Handler {
	return &Handler{Registry: reg, Submitter: sub, Store: store, Account: account}
}

// campaignView is one campaign rendered for display: wei values verbatim as
// the ledger reported them, ether strings derived exactly, lifecycle
// evaluated at response time.
type campaignView struct {
	ID             uint64               `json:"id"`
	GoalWei        string               `json:"goal_wei"`
	GoalEther      string               `json:"goal_eth"`
	RaisedWei      string               `json:"amount_raised_wei"`
	RaisedEther    string               `json:"amount_raised_eth"`
	Deadline       uint64               `json:"deadline"`
	Lifecycle      lifecycle.Evaluation `json:"lifecycle"`
	RemainingHuman string               `json:"remaining"`
}

func newCampaignView(c models.Campaign, now time.Time) campaignView {
	ev := lifecycle.Evaluate(c.Deadline, now)
	return campaignView{
		ID:             c.ID,
		GoalWei:        c.Goal.String(),
		GoalEther:      submit.WeiToEther(c.Goal),
		RaisedWei:      c.AmountRaised.String(),
		RaisedEther:    submit.WeiToEther(c.AmountRaised),
		Deadline:       c.Deadline,
		Lifecycle:      ev,
		RemainingHuman: ev.String(),
	}
}

// ListCampaigns handles GET requests for the cached campaign snapshot
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	campaigns := h.Registry.Campaigns()
	views := make([]campaignView, 0, len(campaigns))
	for _, c := range campaigns {
		views = append(views, newCampaignView(c, now))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account":   h.Account,
		"stale":     h.Registry.Stale(),
		"last_sync": h.Registry.LastSync(),
		"campaigns": views,
	})
}

// GetCampaign handles GET requests for one campaign plus its annotations
func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	c, err := h.Registry.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"campaign": newCampaignView(c, time.Now()),
		"updates":  h.Store.Updates(id),
		"comments": h.Store.Comments(id),
	})
}

// CreateCampaign handles POST requests submitting a campaign-creation
// transaction. Input stays untouched on failure so the caller can correct
// and resubmit.
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Goal     string `json:"goal"`     // ether, decimal string
		Duration string `json:"duration"` // seconds
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Logger.Error("Failed to decode create request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	if err := h.Submitter.CreateCampaign(r.Context(), req.Goal, req.Duration); err != nil {
		logger.Logger.Error("Failed to create campaign", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Campaign created",
		"campaigns": len(h.Registry.Campaigns()),
	})
}

// Contribute handles POST requests submitting a fixed-amount contribution
func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	if err := h.Submitter.Contribute(r.Context(), id); err != nil {
		logger.Logger.Error("Failed to contribute", zap.Uint64("campaign_id", id), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Contribution submitted",
		"amount":  submit.DefaultContribution,
	})
}

// RefreshCampaigns handles POST requests forcing a full resynchronization
func (h *Handler) RefreshCampaigns(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Snapshot refreshed",
		"campaigns": len(h.Registry.Campaigns()),
	})
}

// AddUpdate handles POST requests adding a campaign update. Updates are a
// privileged action; the capability arrives as an opaque header flag set by
// whatever sits in front of this service.
func (h *Handler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Admin") != "true" {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Updates require the admin capability"})
		return
	}
	h.addAnnotation(w, r, h.Store.AddUpdate, "Update added")
}

// AddComment handles POST requests adding a campaign comment
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	h.addAnnotation(w, r, h.Store.AddComment, "Comment added")
}

// ListUpdates handles GET requests for a campaign's updates
func (h *Handler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updates": h.Store.Updates(id)})
}

// ListComments handles GET requests for a campaign's comments
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": h.Store.Comments(id)})
}

func (h *Handler) addAnnotation(w http.ResponseWriter, r *http.Request, add func(uint64, string), message string) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Logger.Error("Failed to decode annotation", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}
	add(id, req.Text)
	writeJSON(w, http.StatusCreated, map[string]string{"message": message})
}

func campaignID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid campaign id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy onto HTTP statuses. Ledger-facing
// failures are always reported, never swallowed.
func writeError(w http.ResponseWriter, err error) {
	var (
		invalid     *submit.InvalidInputError
		notFound    *registry.NotFoundError
		txErr       *chain.TransactionError
		discovery   *registry.DiscoveryError
		connection  *chain.ConnectionError
		unsupported *chain.UnsupportedNetworkError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &txErr):
		status = http.StatusBadGateway
	case errors.As(err, &discovery):
		status = http.StatusServiceUnavailable
	case errors.As(err, &connection), errors.As(err, &unsupported):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
