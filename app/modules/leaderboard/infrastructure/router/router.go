package leaderboardrouter

import (
	leaderboardhandlers "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/handlers"
	"github.com/go-chi/chi/v5"
)

// MountHTTP registers the leaderboard endpoints on r. The leaderboard has no
// event handlers; it reads activity counters on request.
func MountHTTP(r chi.Router, h leaderboardhandlers.HTTPHandlers) {
	r.Route("/leaderboard", func(r chi.Router) {
		r.Get("/", h.HandleGetLeaderboard)
		r.Get("/export.xlsx", h.HandleExportXLSX)
		r.Get("/{userID}/rank-history.png", h.HandleRankHistoryChart)
	})
}
