// Package webapi exposes leaderboard tables as a read-only JSON API. Every
// request is answered from a fresh ledger snapshot.
package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/camtrap-arena/duelrank/internal/labels"
	"github.com/camtrap-arena/duelrank/internal/leaderboard"
	"github.com/camtrap-arena/duelrank/internal/metrics"
	"github.com/camtrap-arena/duelrank/internal/ranking"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// BoardBuilder computes a leaderboard. *leaderboard.Service implements it.
type BoardBuilder interface {
	Build(ctx context.Context, opts leaderboard.Options) (*leaderboard.Board, error)
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	builder  BoardBuilder
	defaults leaderboard.Options
}

// NewHandlers creates Handlers answering with defaults unless a request
// overrides them through query parameters.
func NewHandlers(builder BoardBuilder, defaults leaderboard.Options) *Handlers {
	return &Handlers{builder: builder, defaults: defaults}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleLeaderboard returns every standard table.
func (h *Handlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, leaderboard.SectionStandard, func(b *leaderboard.Board) any { return b })
}

// HandleSummary returns the ledger overview.
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, leaderboard.SectionSummary, func(b *leaderboard.Board) any { return b.Summary })
}

// HandleElo returns the Elo table.
func (h *Handlers) HandleElo(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, leaderboard.SectionElo, func(b *leaderboard.Board) any { return b.Elo })
}

// HandleBradleyTerry returns the Bradley-Terry table.
func (h *Handlers) HandleBradleyTerry(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, leaderboard.SectionBradleyTerry, func(b *leaderboard.Board) any { return b.BradleyTerry })
}

// HandleAccuracy returns per-model accuracy.
func (h *Handlers) HandleAccuracy(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, leaderboard.SectionAccuracy, func(b *leaderboard.Board) any { return b.Accuracy })
}

// HandleMacro returns macro-averaged scores.
func (h *Handlers) HandleMacro(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, leaderboard.SectionMacro, func(b *leaderboard.Board) any { return b.Macro })
}

// HandleSpecies returns the one-vs-rest table for the target query
// parameter, falling back to the configured target.
func (h *Handlers) HandleSpecies(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, leaderboard.SectionSpecies, func(b *leaderboard.Board) any { return b.Species })
}

// HandleConfusion returns confusion matrices, optionally for one model.
func (h *Handlers) HandleConfusion(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")
	h.serve(w, r, leaderboard.SectionConfusion, func(b *leaderboard.Board) any {
		if model == "" {
			return b.Confusion
		}
		out := make([]metrics.ConfusionMatrix, 0, 1)
		for _, m := range b.Confusion {
			if m.Model == model {
				out = append(out, m)
			}
		}
		return out
	})
}

func (h *Handlers) serve(w http.ResponseWriter, r *http.Request, sections leaderboard.Section, pick func(*leaderboard.Board) any) {
	opts, err := OptionsFromQuery(r, h.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if sections == leaderboard.SectionSpecies && opts.Target == "" {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}
	opts.Sections = sections

	board, err := h.builder.Build(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pick(board))
}

// OptionsFromQuery overlays the query parameters normalization, mode,
// outcome, exclude_undecided, ignore_both_bad, method and target onto
// defaults.
func OptionsFromQuery(r *http.Request, defaults leaderboard.Options) (leaderboard.Options, error) {
	q := r.URL.Query()
	opts := defaults
	var err error

	if v := q.Get("normalization"); v != "" {
		if opts.Normalization, err = labels.ParseMode(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("mode"); v != "" {
		if opts.AccuracyMode, err = metrics.ParseAccuracyMode(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("outcome"); v != "" {
		if opts.Outcome, err = ranking.ParseSource(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("exclude_undecided"); v != "" {
		if opts.VotePolicy.ExcludeUndecided, err = strconv.ParseBool(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("ignore_both_bad"); v != "" {
		if opts.VotePolicy.IgnoreBothBad, err = strconv.ParseBool(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("method"); v != "" {
		if opts.BT.Method, err = ranking.ParseMethod(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("target"); v != "" {
		opts.Target = v
	}
	return opts, nil
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/leaderboard", h.HandleLeaderboard)
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/elo", h.HandleElo)
	mux.HandleFunc("GET /api/bradley-terry", h.HandleBradleyTerry)
	mux.HandleFunc("GET /api/accuracy", h.HandleAccuracy)
	mux.HandleFunc("GET /api/macro", h.HandleMacro)
	mux.HandleFunc("GET /api/species", h.HandleSpecies)
	mux.HandleFunc("GET /api/confusion", h.HandleConfusion)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
