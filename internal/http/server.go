// Package http exposes the ledger engine over a JSON API. It stands in
// for the presentation layer: every route maps onto one of the core's
// boundary operations and nothing here holds state of its own.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"pocketflow/internal/ledger"
	"pocketflow/internal/service"
	"pocketflow/internal/store"
)

// Server wires the core components to their HTTP routes.
type Server struct {
	store  *store.Store
	ledger *ledger.DebtLedger
	flow   *service.EntryFlow
	editor *service.Editor

	httpServer *http.Server
}

// NewServer creates a Server listening on the given port once Start is
// called.
func NewServer(port string, st *store.Store, lg *ledger.DebtLedger, flow *service.EntryFlow, editor *service.Editor) *Server {
	s := &Server{store: st, ledger: lg, flow: flow, editor: editor}
	s.httpServer = &http.Server{
		Addr: fmt.Sprintf(":%s", port),
		// h2c allows HTTP/2 without TLS for local clients
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Entry flow (log → finalize)
	mux.HandleFunc("POST /api/v1/entries", s.handleStartEntry)
	mux.HandleFunc("DELETE /api/v1/entries/current", s.handleCancelEntry)
	mux.HandleFunc("POST /api/v1/entries/current/finalize", s.handleFinalizeEntry)
	mux.HandleFunc("PUT /api/v1/entries/current/split", s.handleSplitMode)
	mux.HandleFunc("POST /api/v1/entries/current/shares", s.handleAddShare)
	mux.HandleFunc("PATCH /api/v1/entries/current/shares/{id}", s.handleEditShare)

	// Transactions
	mux.HandleFunc("GET /api/v1/transactions", s.handleListTransactions)
	mux.HandleFunc("PUT /api/v1/transactions/{id}", s.handleUpdateTransaction)

	// Aggregates
	mux.HandleFunc("GET /api/v1/balance", s.handleBalance)
	mux.HandleFunc("GET /api/v1/breakdown", s.handleBreakdown)

	// Split allocator, exposed pure
	mux.HandleFunc("POST /api/v1/splits/recalculate", s.handleRecalculate)

	// Friends and debts
	mux.HandleFunc("GET /api/v1/friends", s.handleListFriends)
	mux.HandleFunc("GET /api/v1/friends/{id}", s.handleGetFriend)
	mux.HandleFunc("POST /api/v1/friends/debts", s.handleAddDebt)
	mux.HandleFunc("POST /api/v1/friends/{id}/payments", s.handleRecordPayment)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(corsMiddleware(metricsMiddleware(mux)))
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	slog.Info("HTTP server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("response encoding failed", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
