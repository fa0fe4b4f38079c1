package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/openhall/gavel/pkg/auction"
	"github.com/openhall/gavel/pkg/storage"
)

// Server exposes the auction engine over REST and WebSocket.
type Server struct {
	engine *auction.Auction
	store  *storage.Store // may be nil; disables journal endpoints
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger

	minRaiseBps int64
	feeBps      int64
}

func NewServer(engine *auction.Auction, store *storage.Store, params auction.Params, log *zap.SugaredLogger) *Server {
	s := &Server{
		engine:      engine,
		store:       store,
		router:      mux.NewRouter(),
		hub:         NewHub(log),
		log:         log,
		minRaiseBps: params.MinRaiseBps,
		feeBps:      params.FeeBps,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Auction reads
	api.HandleFunc("/auction", s.handleGetAuction).Methods("GET")
	api.HandleFunc("/auction/bids", s.handleListBids).Methods("GET")
	api.HandleFunc("/auction/winner", s.handleGetWinner).Methods("GET")
	api.HandleFunc("/auction/events", s.handleGetEvents).Methods("GET")

	// Account reads
	api.HandleFunc("/accounts/{address}", s.handleGetAccount).Methods("GET")

	// Operations
	api.HandleFunc("/bids", s.handlePlaceBid).Methods("POST")
	api.HandleFunc("/finalize", s.handleFinalize).Methods("POST")
	api.HandleFunc("/withdrawals", s.handleWithdraw).Methods("POST")
	api.HandleFunc("/refunds", s.handleRefundAll).Methods("POST")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Sink returns an event sink that pushes engine events to subscribed
// WebSocket clients.
func (s *Server) Sink() auction.Sink {
	return hubSink{hub: s.hub}
}

// Handler exposes the routed handler, without CORS wrapping. Used for
// tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the hub and serves HTTP on addr. Blocks.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	})

	s.log.Infow("api_server_starting", "addr", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	leader := s.engine.Leader()
	info := AuctionInfo{
		State:       s.engine.State().String(),
		Deadline:    s.engine.Deadline().UnixMilli(),
		MinNextBid:  s.engine.MinNextBid(),
		Bidders:     len(s.engine.ListBids()),
		TotalHeld:   s.engine.TotalHeld(),
		MinRaiseBps: s.minRaiseBps,
		FeeBps:      s.feeBps,
	}
	if leader.HasWinner() {
		info.Leader = &LeaderInfo{Bidder: leader.Bidder.Hex(), Amount: leader.Amount}
	}
	respondJSON(w, info)
}

func (s *Server) handleListBids(w http.ResponseWriter, r *http.Request) {
	entries := s.engine.ListBids()
	out := make([]BidEntry, len(entries))
	for i, e := range entries {
		out[i] = BidEntry{Bidder: e.Bidder.Hex(), Balance: e.Balance}
	}
	respondJSON(w, out)
}

func (s *Server) handleGetWinner(w http.ResponseWriter, r *http.Request) {
	leader, err := s.engine.Winner()
	if err != nil {
		s.respondEngineError(w, err)
		return
	}

	info := WinnerInfo{HasWinner: leader.HasWinner(), Amount: leader.Amount}
	if leader.HasWinner() {
		info.Winner = leader.Bidder.Hex()
	}
	respondJSON(w, info)
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "journal disabled", "")
		return
	}
	events, err := s.store.Events(1, 1000)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "journal read failed", err.Error())
		return
	}
	if events == nil {
		events = []storage.EventRecord{}
	}
	respondJSON(w, events)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddress(w, mux.Vars(r)["address"])
	if !ok {
		return
	}
	respondJSON(w, AccountInfo{
		Address: addr.Hex(),
		Balance: s.engine.Balance(addr),
	})
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	var req PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	addr, ok := parseAddress(w, req.Address)
	if !ok {
		return
	}

	if err := s.engine.PlaceBid(addr, req.Amount); err != nil {
		s.respondEngineError(w, err)
		return
	}

	s.log.Infow("bid_accepted_api", "bidder", addr.Hex(), "amount", req.Amount)
	respondJSON(w, map[string]string{"status": "accepted"})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Finalize(); err != nil {
		s.respondEngineError(w, err)
		return
	}

	leader, _ := s.engine.Winner()
	info := WinnerInfo{HasWinner: leader.HasWinner(), Amount: leader.Amount}
	if leader.HasWinner() {
		info.Winner = leader.Bidder.Hex()
	}
	respondJSON(w, info)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	addr, ok := parseAddress(w, req.Address)
	if !ok {
		return
	}

	payout, err := s.engine.WithdrawOwn(addr)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, WithdrawResponse{Status: "refunded", Payout: payout})
}

func (s *Server) handleRefundAll(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.RefundAllNonWinners()
	if err != nil {
		s.respondEngineError(w, err)
		return
	}

	resp := SettlementResponse{
		Refunded: make([]RefundResult, 0, len(report.Refunded)),
		Failed:   make([]RefundResult, 0, len(report.Failed)),
		Total:    report.TotalPaid(),
		Fees:     report.TotalFees(),
	}
	for _, rc := range report.Refunded {
		resp.Refunded = append(resp.Refunded, RefundResult{
			Bidder: rc.Bidder.Hex(),
			Payout: rc.Payout,
			Fee:    rc.Fee,
		})
	}
	for _, f := range report.Failed {
		resp.Failed = append(resp.Failed, RefundResult{
			Bidder: f.Bidder.Hex(),
			Error:  f.Err.Error(),
		})
	}
	respondJSON(w, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Helper Functions
// ==============================

// respondEngineError maps engine precondition failures onto HTTP statuses:
// rejected input is 400, state conflicts are 409.
func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auction.ErrInvalidBid):
		status = http.StatusBadRequest
	case errors.Is(err, auction.ErrAuctionClosed),
		errors.Is(err, auction.ErrAuctionExpired),
		errors.Is(err, auction.ErrStillActive),
		errors.Is(err, auction.ErrAlreadyFinalized),
		errors.Is(err, auction.ErrNotEnded),
		errors.Is(err, auction.ErrNoDeposit),
		errors.Is(err, auction.ErrLeadingBid):
		status = http.StatusConflict
	}
	respondError(w, status, "operation rejected", err.Error())
}

func parseAddress(w http.ResponseWriter, raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		respondError(w, http.StatusBadRequest, "invalid address", raw)
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
