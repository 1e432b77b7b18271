package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"recurcal/internal/caldate"
	"recurcal/internal/config"
	"recurcal/internal/ics"
	appLog "recurcal/internal/log"
	"recurcal/internal/model"
	"recurcal/internal/picker"
	"recurcal/internal/recurrence"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Server provides the HTTP API over the recurrence engine and a single
// shared picker store.
type Server struct {
	cfg   *config.Config
	debug bool
	mux   *http.ServeMux
	now   func() time.Time

	store *picker.Store

	// Draft behind /api/picker/session. picker.Session is not safe for
	// concurrent use.
	sessionMu sync.Mutex
	session   *picker.Session

	// Cached grid for the current month, rebuilt on cfg.RefreshCron and
	// whenever the month rolls over between refreshes.
	monthMu    sync.RWMutex
	monthCache *monthCache
}

// Option customizes a Server.
type Option func(*Server)

// WithClock overrides the wall clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, debug bool, opts ...Option) *Server {
	s := &Server{
		cfg:   cfg,
		debug: debug,
		mux:   http.NewServeMux(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = picker.NewStore(s.today())
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Store exposes the picker store backing /api/picker.
func (s *Server) Store() *picker.Store {
	return s.store
}

func (s *Server) today() caldate.Date {
	return caldate.FromTime(s.now())
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password disables auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="recurcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/calendar", s.handleCalendar)
	s.mux.HandleFunc("/api/export", s.handleExport)
	s.mux.HandleFunc("/api/picker", s.handlePicker)
	s.mux.HandleFunc("/api/picker/actions", s.handlePickerAction)
	s.mux.HandleFunc("/api/picker/apply", s.handlePickerApply)
	s.mux.HandleFunc("/api/picker/session", s.handlePickerSession)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type generateRequest struct {
	Start    caldate.Date `json:"start"`
	Pattern  patternDTO   `json:"pattern"`
	MaxCount int          `json:"max_count"`
}

type generateResponse struct {
	Dates       []caldate.Date `json:"dates"`
	Display     []string       `json:"display"`
	Description string         `json:"description"`
	Label       string         `json:"label"`
	RRule       string         `json:"rrule,omitempty"`
}

// handleGenerate expands a pattern. max_count defaults to the configured
// preview count and is capped by max_count_limit.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Start.IsZero() {
		writeError(w, http.StatusBadRequest, "start is required")
		return
	}
	p, err := req.Pattern.toPattern()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n := req.MaxCount
	if n <= 0 {
		n = s.cfg.PreviewCount
	}
	n = min(n, s.cfg.MaxCountLimit)

	sel := model.NewSelection(req.Start, p, n)
	resp := generateResponse{
		Dates:       sel.Dates,
		Display:     make([]string, 0, sel.Len()),
		Description: sel.Description(),
		Label:       recurrence.Label(p.Type),
	}
	for _, d := range sel.Dates {
		resp.Display = append(resp.Display, d.Long())
	}
	if rule, ok := ics.RRuleFor(sel); ok {
		resp.RRule = rule
	}

	if s.debug {
		appLog.Debug("generate", "start", req.Start, "type", p.Type, "interval", p.Interval, "count", sel.Len())
	}
	writeJSON(w, http.StatusOK, resp)
}

type exportRequest struct {
	Start   caldate.Date `json:"start"`
	Pattern patternDTO   `json:"pattern"`
	Summary string       `json:"summary"`
}

// handleExport returns the committed-size sequence as an .ics file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Start.IsZero() {
		writeError(w, http.StatusBadRequest, "start is required")
		return
	}
	p, err := req.Pattern.toPattern()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary := req.Summary
	if summary == "" {
		summary = s.cfg.ICS.Summary
	}

	sel := model.NewSelection(req.Start, p, s.cfg.CommitCount)
	body, err := ics.Export(sel, ics.Options{
		ProductID: s.cfg.ICS.ProductID,
		Summary:   summary,
		Now:       s.now,
	})
	if err != nil {
		appLog.Error("ics export failed", err, "start", req.Start, "type", p.Type)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="recurrence.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handlePicker(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, newPickerStateResponse(s.store.State()))
}

// handlePickerAction applies one action to the shared store. A partial
// pattern update is validated against the store's pattern under the same
// lock that applies it.
func (s *Server) handlePickerAction(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req actionDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.store.Update(func(cur picker.State) (picker.Action, error) {
		return req.toAction(cur.Pattern)
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appLog.Debug("picker action", "type", req.Type, "open", st.Open)
	writeJSON(w, http.StatusOK, newPickerStateResponse(st))
}

type applyRequest struct {
	Start   caldate.Date `json:"start"`
	Pattern patternDTO   `json:"pattern"`
}

// handlePickerApply commits a start and pattern through a picker session.
func (s *Server) handlePickerApply(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Start.IsZero() {
		writeError(w, http.StatusBadRequest, "start is required")
		return
	}
	p, err := req.Pattern.toPattern()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := picker.NewSession(s.store)
	session.CommitCount = s.cfg.CommitCount
	session.SetStart(req.Start)
	session.SetPattern(p)
	sel, err := session.Apply(s.store)
	if err != nil {
		if isInvalidPattern(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		appLog.Error("picker apply failed", err)
		writeError(w, http.StatusInternalServerError, "failed to apply selection")
		return
	}

	appLog.Info("picker applied", "start", sel.Start, "description", sel.Description(), "count", sel.Len())
	writeJSON(w, http.StatusOK, newPickerStateResponse(s.store.State()))
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// queryInt parses an optional integer query value, returning def when it is
// absent.
func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// isInvalidPattern reports whether err came from pattern validation.
func isInvalidPattern(err error) bool {
	return errors.Is(err, recurrence.ErrInvalidPattern)
}
