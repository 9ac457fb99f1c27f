package leaderboardhandlers

import (
	"fmt"
	"log/slog"
	"net/http"

	leaderboardservice "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/domain"
	"github.com/Black-And-White-Club/envsim/app/shared/clock"
	"github.com/Black-And-White-Club/envsim/app/shared/httpapi"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaderboardHTTPHandlers serves the leaderboard REST endpoints.
type LeaderboardHTTPHandlers struct {
	service leaderboardservice.Service
	logger  *slog.Logger
	clock   clock.Clock
}

// NewLeaderboardHTTPHandlers creates a new LeaderboardHTTPHandlers.
func NewLeaderboardHTTPHandlers(service leaderboardservice.Service, logger *slog.Logger, clk clock.Clock) *LeaderboardHTTPHandlers {
	return &LeaderboardHTTPHandlers{service: service, logger: logger, clock: clk}
}

// LeaderboardResponse is the body of GET /leaderboard.
type LeaderboardResponse struct {
	Entries []leaderboarddomain.LeaderboardEntry `json:"entries"`
}

func (h *LeaderboardHTTPHandlers) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	// Anonymous callers see the board without a highlighted row.
	userID, _ := httpapi.UserIDFromContext(ctx)

	entries, err := h.service.GetLeaderboard(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Leaderboard lookup failed", attr.Error(err))
		httpapi.WriteError(w, http.StatusInternalServerError, "leaderboard unavailable, please try again")
		return
	}
	if entries == nil {
		entries = []leaderboarddomain.LeaderboardEntry{}
	}
	httpapi.WriteJSON(w, http.StatusOK, LeaderboardResponse{Entries: entries})
}

func (h *LeaderboardHTTPHandlers) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := h.service.ExportXLSX(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Leaderboard export failed", attr.Error(err))
		httpapi.WriteError(w, http.StatusInternalServerError, "export failed, please try again")
		return
	}

	filename := fmt.Sprintf("leaderboard-%s.xlsx", clock.DayKey(h.clock.Now()))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *LeaderboardHTTPHandlers) HandleRankHistoryChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		httpapi.WriteError(w, http.StatusBadRequest, "user id is required")
		return
	}

	png, err := h.service.RankHistoryChart(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Rank history chart failed", attr.UserID(userID), attr.Error(err))
		httpapi.WriteError(w, http.StatusInternalServerError, "chart unavailable, please try again")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
