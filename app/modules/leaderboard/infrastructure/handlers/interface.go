package leaderboardhandlers

import "net/http"

// HTTPHandlers defines the leaderboard HTTP endpoints.
type HTTPHandlers interface {
	HandleGetLeaderboard(w http.ResponseWriter, r *http.Request)
	HandleExportXLSX(w http.ResponseWriter, r *http.Request)
	HandleRankHistoryChart(w http.ResponseWriter, r *http.Request)
}
