package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pefman/gesture-duel/internal/game"
	"github.com/pefman/gesture-duel/internal/models"
	"github.com/pefman/gesture-duel/internal/roster"
	"github.com/pefman/gesture-duel/internal/stats"
)

// Server exposes roster data, battle history and the battle socket.
type Server struct {
	Roster            *roster.Roster
	Store             stats.Store
	Daily             *stats.Daily
	Recorder          game.OutcomeRecorder
	Clock             roster.Clock
	Pacing            game.Pacing
	RequirePeripheral bool
	StaticDir         string
	Version           string
	BuildTime         string
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"version": s.Version, "build_time": s.BuildTime})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/roster", s.handleRoster).Methods(http.MethodGet)
	r.HandleFunc("/api/roster/{id}", s.handleCreature).Methods(http.MethodGet)
	r.HandleFunc("/api/chart", s.handleChart).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/stats/daily", s.handleDaily).Methods(http.MethodGet)
	r.HandleFunc("/api/sim/hit", s.handleSimHit).Methods(http.MethodPost)
	r.HandleFunc("/api/sim/battle", s.handleSimBattle).Methods(http.MethodPost)
	r.HandleFunc("/debug", handleClientDebug).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWS)
	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}
	return withCORS(r)
}

func (s *Server) clock() roster.Clock {
	if s.Clock == nil {
		return roster.RealClock{}
	}
	return s.Clock
}

func (s *Server) creatures(ids []string) []models.Creature {
	out := make([]models.Creature, 0, len(ids))
	for _, id := range ids {
		if c, err := s.Roster.Lookup(id); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// GET /api/roster?time=day|night
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	tod := roster.TimeOfDayAt(s.clock().Now())
	switch q := models.TimeOfDay(r.URL.Query().Get("time")); q {
	case "":
	case models.Day, models.Night:
		tod = q
	default:
		writeError(w, http.StatusBadRequest, "time must be day or night")
		return
	}
	writeJSON(w, map[string]any{
		"timeOfDay": tod,
		"slot":      roster.SlotName(tod),
		"players":   s.creatures(s.Roster.PlayerPool(tod)),
		"opponents": s.creatures(s.Roster.Opponents()),
	})
}

// GET /api/roster/{id}
func (s *Server) handleCreature(w http.ResponseWriter, r *http.Request) {
	c, err := s.Roster.Lookup(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, c)
}

// GET /api/chart
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Roster.Chart())
}

// GET /api/history?limit=N
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeJSON(w, []models.BattleRecord{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	recs, err := s.Store.List(r.Context(), limit)
	if err != nil {
		log.Printf("api: history list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if recs == nil {
		recs = []models.BattleRecord{}
	}
	writeJSON(w, recs)
}

// GET /api/stats/daily
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if s.Daily == nil {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, s.Daily.Today())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}

// handleClientDebug logs a short message posted by the browser.
func handleClientDebug(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		msg = "(empty client debug)"
	}
	log.Printf("client-debug: %s", msg)
	w.WriteHeader(http.StatusNoContent)
}

// simple CORS for GET/POST/OPTIONS
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
