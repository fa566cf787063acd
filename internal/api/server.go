// Package api exposes the management HTTP layer: campaign and alert
// CRUD, trigger history, wallets, health, and the WebSocket endpoint.
// The scheduler runs independently of any request.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"solana-price-sentinel/internal/campaign"
	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/observability"
	"solana-price-sentinel/internal/pricefeed"
	"solana-price-sentinel/internal/solana"
	"solana-price-sentinel/internal/storage"
)

// Server wires the HTTP handlers to the core components.
type Server struct {
	campaigns *campaign.Store
	history   storage.TriggerHistoryStore
	wallets   storage.WalletStore
	ticks     storage.PriceTickStore
	wsHandler http.Handler
	logger    *log.Logger
	startedAt time.Time
}

// Options contains configuration for creating a Server. History, wallet
// and tick stores may be nil; their endpoints then answer 503.
type Options struct {
	Campaigns *campaign.Store
	History   storage.TriggerHistoryStore
	Wallets   storage.WalletStore
	Ticks     storage.PriceTickStore
	WSHandler http.Handler
	Logger    *log.Logger
}

// NewServer creates the management API server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		campaigns: opts.Campaigns,
		history:   opts.History,
		wallets:   opts.Wallets,
		ticks:     opts.Ticks,
		wsHandler: opts.WSHandler,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/campaigns", s.handleStartCampaign)
	mux.HandleFunc("GET /api/campaigns", s.handleListCampaigns)
	mux.HandleFunc("GET /api/campaigns/{id}", s.handleGetCampaign)
	mux.HandleFunc("POST /api/campaigns/{id}/stop", s.handleStopCampaign)
	mux.HandleFunc("POST /api/campaigns/{id}/reset", s.handleResetCampaign)

	mux.HandleFunc("POST /api/campaigns/{id}/alerts", s.handleAddAlert)
	mux.HandleFunc("GET /api/campaigns/{id}/alerts", s.handleGetAlerts)
	mux.HandleFunc("PUT /api/alerts/{id}/actions", s.handleUpdateAlertActions)
	mux.HandleFunc("DELETE /api/alerts/{id}", s.handleDeleteAlert)

	mux.HandleFunc("GET /api/campaigns/{id}/history", s.handleCampaignHistory)
	mux.HandleFunc("GET /api/history/recent", s.handleRecentHistory)
	mux.HandleFunc("GET /api/campaigns/{id}/ticks", s.handleCampaignTicks)

	mux.HandleFunc("POST /api/wallets", s.handleCreateWallet)
	mux.HandleFunc("GET /api/wallets/{id}", s.handleGetWallet)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", observability.Handler())

	if s.wsHandler != nil {
		mux.Handle("GET /ws", s.wsHandler)
	}

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			s.logger.Printf("encode response: %v", err)
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

type startCampaignRequest struct {
	TokenMint   string `json:"token_mint"`
	PoolAddress string `json:"pool_address"`
}

func (s *Server) handleStartCampaign(w http.ResponseWriter, r *http.Request) {
	var req startCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := s.campaigns.StartCampaign(r.Context(), req.TokenMint, req.PoolAddress)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, c)
	case errors.Is(err, campaign.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricefeed.ErrUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Printf("start campaign: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns := s.campaigns.GetActiveCampaigns()
	if campaigns == nil {
		campaigns = []*domain.Campaign{}
	}
	s.writeJSON(w, http.StatusOK, campaigns)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c := s.campaigns.GetCampaign(r.PathValue("id"))
	if c == nil {
		s.writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleStopCampaign(w http.ResponseWriter, r *http.Request) {
	if err := s.campaigns.StopCampaign(r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetCampaign(w http.ResponseWriter, r *http.Request) {
	// Reset treats an unknown campaign as a no-op.
	s.campaigns.ResetCampaign(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type addAlertRequest struct {
	Target    float64          `json:"target"`
	Direction domain.Direction `json:"direction"`
	PriceType domain.PriceType `json:"price_type"`
	Actions   []domain.Action  `json:"actions,omitempty"`
}

func (s *Server) handleAddAlert(w http.ResponseWriter, r *http.Request) {
	var req addAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	alert, err := s.campaigns.AddAlert(r.PathValue("id"), req.Target, req.Direction, req.PriceType, req.Actions)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if alert == nil {
		s.writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	s.writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleGetAlerts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.campaigns.GetCampaign(id) == nil {
		s.writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	alerts := s.campaigns.GetAlerts(id)
	if alerts == nil {
		alerts = []*domain.Alert{}
	}
	s.writeJSON(w, http.StatusOK, alerts)
}

type updateActionsRequest struct {
	Actions []domain.Action `json:"actions"`
}

func (s *Server) handleUpdateAlertActions(w http.ResponseWriter, r *http.Request) {
	var req updateActionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !s.campaigns.UpdateAlertActions(r.PathValue("id"), req.Actions) {
		s.writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	if !s.campaigns.DeleteAlert(r.PathValue("id")) {
		s.writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCampaignHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "trigger history not configured")
		return
	}
	records, err := s.history.GetByCampaignID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Printf("campaign history: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []*domain.TriggerRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRecentHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "trigger history not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.history.GetRecent(r.Context(), limit)
	if err != nil {
		s.logger.Printf("recent history: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []*domain.TriggerRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCampaignTicks(w http.ResponseWriter, r *http.Request) {
	if s.ticks == nil {
		s.writeError(w, http.StatusServiceUnavailable, "tick archive not configured")
		return
	}

	id := r.PathValue("id")
	q := r.URL.Query()

	var (
		records []*domain.PriceTick
		err     error
	)
	if q.Get("start") != "" || q.Get("end") != "" {
		start, err1 := strconv.ParseInt(q.Get("start"), 10, 64)
		end, err2 := strconv.ParseInt(q.Get("end"), 10, 64)
		if err1 != nil || err2 != nil {
			s.writeError(w, http.StatusBadRequest, "start and end must be Unix ms timestamps")
			return
		}
		records, err = s.ticks.GetByTimeRange(r.Context(), id, start, end)
	} else {
		records, err = s.ticks.GetByCampaignID(r.Context(), id)
	}
	if err != nil {
		s.logger.Printf("campaign ticks: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []*domain.PriceTick{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

type createWalletRequest struct {
	WalletID    string `json:"wallet_id"`
	Address     string `json:"address"`
	OwnerUserID string `json:"owner_user_id"`
	Label       string `json:"label,omitempty"`
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	if s.wallets == nil {
		s.writeError(w, http.StatusServiceUnavailable, "wallet store not configured")
		return
	}

	var req createWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.WalletID == "" || req.Address == "" {
		s.writeError(w, http.StatusBadRequest, "wallet_id and address are required")
		return
	}
	if err := solana.ValidateWalletAddress(req.Address); err != nil {
		s.writeError(w, http.StatusBadRequest, "address must be an on-curve Solana public key")
		return
	}

	wallet := &domain.Wallet{
		WalletID:    req.WalletID,
		Address:     req.Address,
		OwnerUserID: req.OwnerUserID,
		Label:       req.Label,
		CreatedAt:   time.Now().UnixMilli(),
	}
	err := s.wallets.Insert(r.Context(), wallet)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, wallet)
	case errors.Is(err, storage.ErrDuplicateKey):
		s.writeError(w, http.StatusConflict, "wallet already exists")
	case errors.Is(err, storage.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Printf("create wallet: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	if s.wallets == nil {
		s.writeError(w, http.StatusServiceUnavailable, "wallet store not configured")
		return
	}

	wallet, err := s.wallets.GetByID(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, wallet)
	case errors.Is(err, storage.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "wallet not found")
	default:
		s.logger.Printf("get wallet: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"uptime_seconds":   int64(time.Since(s.startedAt).Seconds()),
		"active_campaigns": len(s.campaigns.GetActiveCampaigns()),
	})
}
