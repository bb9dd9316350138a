package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"crowdfund-sync/annotations"
	"crowdfund-sync/chain"
	"crowdfund-sync/handlers"
	"crowdfund-sync/logger"
	"crowdfund-sync/registry"
	"crowdfund-sync/routers"
	"crowdfund-sync/submit"
)

const testAccount = "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"

func testServer(t *testing.T) (*mux.Router, *chain.MemoryLedger) {
	t.Helper()
	logger.Logger = zap.NewNop()

	ledger := chain.NewMemoryLedger()
	reg := registry.New(ledger, 2)
	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh failed: %v", err)
	}
	sub := submit.New(ledger, reg, testAccount)
	store, err := annotations.NewStore(nil)
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}

	handler := handlers.NewHandler(reg, sub, store, testAccount)
	router := mux.NewRouter()
	routers.RegisterRoutes(router, handler)
	return router, ledger
}

func postJSON(router *mux.Router, path string, body map[string]interface{}, header map[string]string) *httptest.ResponseRecorder {
	bodyJSON, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(bodyJSON))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestCreateCampaign_Success(t *testing.T) {
	router, ledger := testServer(t)

	res := postJSON(router, "/campaigns", map[string]interface{}{
		"goal":     "1.5",
		"duration": "3600",
	}, nil)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body: %s", res.Code, res.Body.String())
	}
	if ledger.Writes() != 1 {
		t.Fatalf("expected exactly 1 ledger write, got %d", ledger.Writes())
	}

	// the snapshot must already reflect the write
	listRes := httptest.NewRecorder()
	router.ServeHTTP(listRes, httptest.NewRequest(http.MethodGet, "/campaigns", nil))
	if listRes.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body: %s", listRes.Code, listRes.Body.String())
	}

	var listBody struct {
		Stale     bool `json:"stale"`
		Campaigns []struct {
			ID        uint64 `json:"id"`
			GoalWei   string `json:"goal_wei"`
			Lifecycle struct {
				State string `json:"state"`
			} `json:"lifecycle"`
		} `json:"campaigns"`
	}
	if err := json.Unmarshal(listRes.Body.Bytes(), &listBody); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(listBody.Campaigns) != 1 {
		t.Fatalf("expected 1 campaign, got %d", len(listBody.Campaigns))
	}
	if listBody.Campaigns[0].GoalWei != "1500000000000000000" {
		t.Fatalf("expected goal 1.5e18 wei, got %s", listBody.Campaigns[0].GoalWei)
	}
	if listBody.Campaigns[0].Lifecycle.State != "active" {
		t.Fatalf("expected active campaign, got %s", listBody.Campaigns[0].Lifecycle.State)
	}
	if listBody.Stale {
		t.Fatal("snapshot unexpectedly marked stale")
	}
}

func TestCreateCampaign_InvalidDuration(t *testing.T) {
	router, ledger := testServer(t)

	res := postJSON(router, "/campaigns", map[string]interface{}{
		"goal":     "1",
		"duration": "soon",
	}, nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body: %s", res.Code, res.Body.String())
	}
	if ledger.Writes() != 0 {
		t.Fatalf("validation failure must not reach the ledger, got %d writes", ledger.Writes())
	}
}

func TestContribute_Success(t *testing.T) {
	router, _ := testServer(t)

	created := postJSON(router, "/campaigns", map[string]interface{}{
		"goal":     "2",
		"duration": "600",
	}, nil)
	if created.Code != http.StatusCreated {
		t.Fatalf("campaign creation failed: %d %s", created.Code, created.Body.String())
	}

	res := postJSON(router, "/campaigns/1/contributions", nil, nil)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body: %s", res.Code, res.Body.String())
	}

	detailRes := httptest.NewRecorder()
	router.ServeHTTP(detailRes, httptest.NewRequest(http.MethodGet, "/campaigns/1", nil))
	if detailRes.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body: %s", detailRes.Code, detailRes.Body.String())
	}

	var detailBody struct {
		Campaign struct {
			RaisedWei string `json:"amount_raised_wei"`
		} `json:"campaign"`
	}
	if err := json.Unmarshal(detailRes.Body.Bytes(), &detailBody); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if detailBody.Campaign.RaisedWei != "100000000000000000" {
		t.Fatalf("expected 0.1e18 wei raised after refresh, got %s", detailBody.Campaign.RaisedWei)
	}
}

func TestContribute_UnknownCampaign(t *testing.T) {
	router, ledger := testServer(t)

	res := postJSON(router, "/campaigns/9/contributions", nil, nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d, body: %s", res.Code, res.Body.String())
	}
	if ledger.Writes() != 0 {
		t.Fatalf("rejected contribution must not reach the ledger, got %d writes", ledger.Writes())
	}
}

func TestGetCampaign_NotFound(t *testing.T) {
	router, _ := testServer(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/campaigns/3", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d, body: %s", res.Code, res.Body.String())
	}
}

func TestAddUpdate_RequiresAdminCapability(t *testing.T) {
	router, _ := testServer(t)

	res := postJSON(router, "/campaigns/1/updates", map[string]interface{}{"text": "shipped"}, nil)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 without capability, got %d", res.Code)
	}

	res = postJSON(router, "/campaigns/1/updates", map[string]interface{}{"text": "shipped"},
		map[string]string{"X-Admin": "true"})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected status 201 with capability, got %d, body: %s", res.Code, res.Body.String())
	}

	listRes := httptest.NewRecorder()
	router.ServeHTTP(listRes, httptest.NewRequest(http.MethodGet, "/campaigns/1/updates", nil))
	var listBody struct {
		Updates []string `json:"updates"`
	}
	if err := json.Unmarshal(listRes.Body.Bytes(), &listBody); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(listBody.Updates) != 1 || listBody.Updates[0] != "shipped" {
		t.Fatalf("expected [shipped], got %v", listBody.Updates)
	}
}

func TestComments_AddAndList(t *testing.T) {
	router, _ := testServer(t)

	res := postJSON(router, "/campaigns/7/comments", map[string]interface{}{"text": "nice"}, nil)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body: %s", res.Code, res.Body.String())
	}

	listRes := httptest.NewRecorder()
	router.ServeHTTP(listRes, httptest.NewRequest(http.MethodGet, "/campaigns/7/comments", nil))
	var listBody struct {
		Comments []string `json:"comments"`
	}
	if err := json.Unmarshal(listRes.Body.Bytes(), &listBody); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(listBody.Comments) != 1 || listBody.Comments[0] != "nice" {
		t.Fatalf("expected [nice], got %v", listBody.Comments)
	}

	otherRes := httptest.NewRecorder()
	router.ServeHTTP(otherRes, httptest.NewRequest(http.MethodGet, "/campaigns/8/comments", nil))
	var otherBody struct {
		Comments []string `json:"comments"`
	}
	if err := json.Unmarshal(otherRes.Body.Bytes(), &otherBody); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(otherBody.Comments) != 0 {
		t.Fatalf("expected no comments for campaign 8, got %v", otherBody.Comments)
	}
}
