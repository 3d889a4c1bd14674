package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/VolumeQuant/quantcore/internal/contracts"
	"github.com/VolumeQuant/quantcore/internal/ranking"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// RankingHandler serves stored ranking snapshots.
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	store    ranking.SnapshotStore
	smoother *ranking.Smoother
	logger   *logger.Logger
}

func NewRankingHandler(store ranking.SnapshotStore, smoother *ranking.Smoother, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		store:    store,
		smoother: smoother,
		logger:   log,
	}
}

// GetLatest returns the most recent ranking snapshot.
// GET /api/ranking/latest
func (h *RankingHandler) GetLatest(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := h.latest()
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// GetByDate returns the ranking snapshot for a date.
// GET /api/ranking/{date}
func (h *RankingHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", mux.Vars(r)["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	snapshot, err := h.store.Get(date)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// GetWeighted returns the latest smoothed ranking with membership
// status and the Slow-In pick list.
// GET /api/ranking/latest/weighted
func (h *RankingHandler) GetWeighted(w http.ResponseWriter, _ *http.Request) {
	today, err := h.latest()
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	prev, prev2, err := ranking.Prior(h.store, today.Date)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	weighted := h.smoother.Weigh(today, prev, prev2)
	picks := h.smoother.Intersection(weighted, today, prev, prev2)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":     today.Date.Format("2006-01-02"),
		"weighted": weighted,
		"picks":    picks,
	})
}

// latest loads the newest stored snapshot.
func (h *RankingHandler) latest() (*contracts.RankingSnapshot, error) {
	dates, err := h.store.Dates()
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, contracts.ErrMissingPriorSnapshot
	}
	return h.store.Get(dates[len(dates)-1])
}

func (h *RankingHandler) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, contracts.ErrMissingPriorSnapshot) {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	h.logger.WithError(err).Error("snapshot store failure")
	writeError(w, http.StatusInternalServerError, "snapshot store failure")
}
