package webserver

import (
	"net/http"

	"github.com/camtrap-arena/duelrank/internal/report"
	"github.com/camtrap-arena/duelrank/internal/webapi"
)

// registerRoutes sets up the JSON API and the rendered report page.
func registerRoutes(mux *http.ServeMux, cfg Config) {
	h := webapi.NewHandlers(cfg.Builder, cfg.Defaults)
	webapi.RegisterRoutes(mux, h)
	mux.HandleFunc("GET /{$}", reportHandler(cfg))
}

// reportHandler renders the full leaderboard as an HTML page. Query
// parameters override the defaults the same way they do for the API.
func reportHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := webapi.OptionsFromQuery(r, cfg.Defaults)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		board, err := cfg.Builder.Build(r.Context(), opts)
		if err != nil {
			cfg.Logger.Error("building leaderboard", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		page, err := report.HTML(board)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page)) //nolint:errcheck
	}
}
