package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/wrenqi/daystar/internal/backtest"
	"github.com/wrenqi/daystar/internal/contracts"
	"github.com/wrenqi/daystar/internal/perf"
	"github.com/wrenqi/daystar/pkg/logger"
)

// Store holds the latest run snapshot shared between the scan job and
// the API handlers. Readers never see a partially updated run.
type Store struct {
	mu      sync.RWMutex
	signals []contracts.FusedSignal
	result  *backtest.Result
	report  *perf.Report
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetRun replaces the current run snapshot atomically.
func (s *Store) SetRun(result *backtest.Result, report *perf.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.report = report
}

// SetSignals replaces the current signal set.
func (s *Store) SetSignals(signals []contracts.FusedSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = signals
}

// Signals returns the current signal set.
func (s *Store) Signals() []contracts.FusedSignal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signals
}

// Run returns the current run snapshot. Either may be nil before the
// first run completes.
func (s *Store) Run() (*backtest.Result, *perf.Report) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.report
}

// Handler serves signal and report endpoints from the store.
type Handler struct {
	store  *Store
	logger *logger.Logger
}

// NewHandler creates a new handler.
func NewHandler(store *Store, log *logger.Logger) *Handler {
	return &Handler{store: store, logger: log}
}

// GetSignals returns the latest fused signals. ?actionable=true filters
// to tradeable grades.
func (h *Handler) GetSignals(w http.ResponseWriter, r *http.Request) {
	signals := h.store.Signals()

	if r.URL.Query().Get("actionable") == "true" {
		filtered := make([]contracts.FusedSignal, 0, len(signals))
		for _, sig := range signals {
			if sig.Grade.Actionable() {
				filtered = append(filtered, sig)
			}
		}
		signals = filtered
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(signals),
		"signals": signals,
	})
}

// GetReport returns the latest performance summary.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	_, report := h.store.Run()
	if report == nil {
		writeError(w, http.StatusNotFound, "no backtest run available")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetEquity returns the latest equity curve.
func (h *Handler) GetEquity(w http.ResponseWriter, r *http.Request) {
	_, report := h.store.Run()
	if report == nil {
		writeError(w, http.StatusNotFound, "no backtest run available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(report.EquityCurve),
		"equity": report.EquityCurve,
	})
}

// GetTrades returns the latest run's trade records.
func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	result, _ := h.store.Run()
	if result == nil {
		writeError(w, http.StatusNotFound, "no backtest run available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(result.Trades),
		"trades": result.Trades,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
