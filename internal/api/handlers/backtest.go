package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/VolumeQuant/quantcore/internal/backtest"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// BacktestHandler serves stored simulation results.
type BacktestHandler struct {
	store  *backtest.RunStore
	logger *logger.Logger
}

func NewBacktestHandler(store *backtest.RunStore, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{store: store, logger: log}
}

// ListRuns returns every stored run ID.
// GET /api/backtest/runs
func (h *BacktestHandler) ListRuns(w http.ResponseWriter, _ *http.Request) {
	ids, err := h.store.List()
	if err != nil {
		h.logger.WithError(err).Error("run store failure")
		writeError(w, http.StatusInternalServerError, "run store failure")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": ids})
}

// GetRun returns one stored simulation result.
// GET /api/backtest/runs/{id}
func (h *BacktestHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	result, err := h.store.Load(runID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		h.logger.WithError(err).Error("run store failure")
		writeError(w, http.StatusInternalServerError, "run store failure")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
