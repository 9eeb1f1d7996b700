// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"example.com/exercisetracker/internal/domain"
)

// calendarDate renders dates as short descriptive calendar strings,
// e.g. "Sun Jan 01 2023". This format is part of the API contract.
const calendarDate = "Mon Jan 02 2006"

// Handler coordinates HTTP requests with the domain service.
//
// Failures are reported in-band: the response is always HTTP 200 with
// an {"error": "..."} body. Clients of the original deployment key off
// the body, not the status code, so this is contract rather than style.
type Handler struct {
	service  *domain.Service
	logger   zerolog.Logger
	filterTZ *time.Location
}

// NewHandler builds a Handler. filterTZ is the fixed offset applied to
// from/to log filter dates.
func NewHandler(service *domain.Service, logger zerolog.Logger, filterTZ *time.Location) *Handler {
	if filterTZ == nil {
		filterTZ = time.UTC
	}
	return &Handler{service: service, logger: logger, filterTZ: filterTZ}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/users", h.users)
	mux.HandleFunc("/api/users/", h.userSubresource)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listUsers(w, r)
	case http.MethodPost:
		h.registerUser(w, r)
	default:
		writeMethodNotAllowed(w)
	}
}

func (h *Handler) userSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, "Operation failed")
		return
	}

	id := parts[0]
	switch parts[1] {
	case "exercises":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		h.addExercise(w, r, id)
	case "logs":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		h.getLog(w, r, id)
	default:
		writeError(w, "Operation failed")
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list users failed")
		writeError(w, "invalid")
		return
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, UserView{Username: user.Username, ID: user.ID})
	}
	writeJSON(w, views)
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, "Operation failed")
		return
	}

	username := r.FormValue("username")
	if strings.TrimSpace(username) == "" {
		writeError(w, "Operation failed")
		return
	}

	user, err := h.service.RegisterUser(r.Context(), username)
	if err != nil {
		h.logger.Error().Err(err).Str("username", username).Msg("register user failed")
		writeError(w, "Operation failed")
		return
	}

	writeJSON(w, UserView{Username: user.Username, ID: user.ID})
}

func (h *Handler) addExercise(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		writeError(w, "Operation failed")
		return
	}

	// Legacy clients duplicated the user id in the body under ":_id";
	// when present it wins over the path parameter.
	if legacy := r.FormValue(":_id"); legacy != "" {
		id = legacy
	}

	description := r.FormValue("description")
	if strings.TrimSpace(description) == "" {
		writeError(w, "Operation failed")
		return
	}

	duration, err := strconv.Atoi(r.FormValue("duration"))
	if err != nil {
		writeError(w, "Operation failed")
		return
	}

	date, err := parseBodyDate(r.FormValue("date"))
	if err != nil {
		writeError(w, "Operation failed")
		return
	}

	exercise, user, err := h.service.AddExercise(r.Context(), domain.AddExerciseInput{
		UserID:      id,
		Description: description,
		Duration:    duration,
		Date:        date,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, "user doesn't exist")
			return
		}
		h.logger.Error().Err(err).Str("user_id", id).Msg("add exercise failed")
		writeError(w, "Operation failed")
		return
	}

	writeJSON(w, ExerciseView{
		ID:          user.ID,
		Username:    user.Username,
		Date:        exercise.Date.Format(calendarDate),
		Duration:    exercise.Duration,
		Description: exercise.Description,
	})
}

func (h *Handler) getLog(w http.ResponseWriter, r *http.Request, id string) {
	query := r.URL.Query()

	var from, to *time.Time
	var fromStr, toStr string

	if raw := query.Get("from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.filterTZ)
		if err != nil {
			writeError(w, "Operation failed")
			return
		}
		from = &parsed
		fromStr = parsed.Format(calendarDate)
	}

	if raw := query.Get("to"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.filterTZ)
		if err != nil {
			writeError(w, "Operation failed")
			return
		}
		to = &parsed
		toStr = parsed.Format(calendarDate)
	}

	// An absent or unparseable limit means no truncation, never an
	// empty result.
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	user, exercises, err := h.service.GetLog(r.Context(), id, from, to, limit)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, "user doesn't exist")
			return
		}
		h.logger.Error().Err(err).Str("user_id", id).Msg("get log failed")
		writeError(w, "Operation failed")
		return
	}

	entries := make([]LogEntry, 0, len(exercises))
	for _, exercise := range exercises {
		entries = append(entries, LogEntry{
			Description: exercise.Description,
			Duration:    exercise.Duration,
			Date:        exercise.Date.Format(calendarDate),
		})
	}

	writeJSON(w, LogResponse{
		ID:       user.ID,
		Username: user.Username,
		From:     fromStr,
		To:       toStr,
		Count:    len(entries),
		Log:      entries,
	})
}

// parseBodyDate interprets the optional exercise date field. Empty
// means the current moment; an unparseable value is rejected rather
// than stored as a silent invalid date.
func parseBodyDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Now().UTC(), nil
	}
	if parsed, err := time.Parse("2006-01-02", trimmed); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, trimmed)
}

// UserView is the public shape of a user record.
type UserView struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// ExerciseView is the response body for a created exercise. ID is the
// owning user's id, matching the historical contract.
type ExerciseView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// LogEntry is one row of a user's exercise log.
type LogEntry struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogResponse packages a user's filtered exercise log. From and To are
// echoed only when the corresponding query parameter was supplied.
type LogResponse struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	From     string     `json:"from,omitempty"`
	To       string     `json:"to,omitempty"`
	Count    int        `json:"count"`
	Log      []LogEntry `json:"log"`
}

func writeError(w http.ResponseWriter, message string) {
	// In-band error contract: HTTP 200, error in the body.
	writeJSON(w, map[string]string{"error": message})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Operation failed"})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
