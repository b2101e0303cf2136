package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PabloGalante/mindweave/internal/app/companion"
	"github.com/PabloGalante/mindweave/internal/app/journal"
	"github.com/PabloGalante/mindweave/internal/app/prefs"
	"github.com/PabloGalante/mindweave/internal/app/reports"
	"github.com/PabloGalante/mindweave/internal/app/selfsage"
	"github.com/PabloGalante/mindweave/internal/app/share"
	"github.com/PabloGalante/mindweave/internal/domain"
	"github.com/PabloGalante/mindweave/internal/observability"
)

// Deps are the application services the HTTP API exposes.
type Deps struct {
	Journal      *journal.Store
	Codec        *share.Codec
	PublicURL    *url.URL
	Chats        *companion.Service
	Sage         *selfsage.Service
	Reports      *reports.Service
	Onboarding   *prefs.Onboarding
	Affirmations *prefs.Affirmations
}

type Server struct {
	Deps
}

func NewServer(d Deps) http.Handler {
	s := &Server{Deps: d}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /entries → list (GET), add (POST)
	mux.HandleFunc("/entries", s.handleEntries)

	// /entries/{id}, /entries/{id}/feedback, /entries/{id}/share
	mux.HandleFunc("/entries/", s.handleEntryWithID)

	// /shared?share=... (any GET with ?share= is caught by withSharedView first)
	mux.HandleFunc("/shared", s.handleShared)

	// /chats → start chat (POST)
	mux.HandleFunc("/chats", s.handleChats)

	// /chats/{id}, /chats/{id}/messages, /chats/{id}/messages/{msgId}/feedback,
	// /chats/{id}/stream
	mux.HandleFunc("/chats/", s.handleChatWithID)

	mux.HandleFunc("/topics", s.handleTopics)
	mux.HandleFunc("/topics/", s.handleTopic)

	mux.HandleFunc("/reports", s.handleReports)
	mux.HandleFunc("/affirmation", s.handleAffirmation)
	mux.HandleFunc("/onboarding", s.handleOnboarding)

	return chainMiddlewares(mux,
		s.withSharedView,
		withLogging,
		withCORS,
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createEntryRequest struct {
	Text string `json:"text"`
}

type feedbackRequest struct {
	Rating  domain.Rating `json:"rating" validate:"required,oneof=good bad"`
	Comment string        `json:"comment,omitempty"`
}

type listEntriesResponse struct {
	Entries []domain.JournalEntry `json:"entries"`
	Busy    bool                  `json:"busy"`
	Error   string                `json:"error,omitempty"`
}

type shareResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sharedViewResponse struct {
	Entry domain.JournalEntry `json:"entry"`
}

type reportRequest struct {
	Period string `json:"period"`
}

type reportResponse struct {
	Period  domain.Period `json:"period"`
	Summary string        `json:"summary"`
}

type onboardingResponse struct {
	Seen bool `json:"seen"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /entries
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListEntries(w, r)
	case http.MethodPost:
		s.handleAddEntry(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /entries/{id}, /entries/{id}/feedback, /entries/{id}/share
func (s *Server) handleEntryWithID(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/entries/")
	if len(parts) == 0 {
		http.NotFound(w, r)
		return
	}
	id := domain.EntryID(parts[0])

	switch {
	case len(parts) == 1:
		// /entries/{id}
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetEntry(w, r, id)

	case len(parts) == 2 && (parts[1] == "feedback" || parts[1] == "share"):
		// /entries/{id}/feedback, /entries/{id}/share
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if parts[1] == "feedback" {
			s.handleEntryFeedback(w, r, id)
		} else {
			s.handleShareEntry(w, r, id)
		}

	default:
		http.NotFound(w, r)
	}
}

// /shared?share=...
func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	token, _ := share.TokenFromQuery(r.URL.Query())
	s.writeSharedView(w, r, token)
}

// /topics
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"topics": s.Sage.Topics()})
}

// /topics/{name}
func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/topics/")
	if name == "" {
		http.NotFound(w, r)
		return
	}

	text, err := s.Sage.Explain(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"topic": name, "explanation": text})
}

// ─────────────────────────────────────────────
// Journal handlers
// ─────────────────────────────────────────────

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	resp := listEntriesResponse{
		Entries: s.Journal.Entries(),
		Busy:    s.Journal.Busy(),
	}
	if err := s.Journal.LastError(); err != nil {
		resp.Error = domain.UserMessage(err)
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /entries answers 202 with the pending entry. With ?wait=true it waits
// for the analysis and answers with the analyzed entry instead.
func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	sub, err := s.Journal.AddEntry(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, sub.Entry)
		return
	}

	entry, err := sub.Wait(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request, id domain.EntryID) {
	entry, ok := s.Journal.Get(id)
	if !ok {
		writeError(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleEntryFeedback(w http.ResponseWriter, r *http.Request, id domain.EntryID) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := domain.ValidateStruct(req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if _, ok := s.Journal.Get(id); !ok {
		writeError(w, r, domain.ErrNotFound)
		return
	}

	fb := domain.Feedback{Rating: req.Rating, Comment: strings.TrimSpace(req.Comment)}
	entry, ok := s.Journal.UpdateFeedback(r.Context(), id, fb)
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "feedback can only be given once, on an analyzed entry",
		})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleShareEntry(w http.ResponseWriter, r *http.Request, id domain.EntryID) {
	entry, ok := s.Journal.Get(id)
	if !ok {
		writeError(w, r, domain.ErrNotFound)
		return
	}
	if entry.IsAnalyzing {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "entry is still being analyzed",
		})
		return
	}

	token, expiresAt, err := s.Codec.EncodeWithExpiry(entry)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, shareResponse{
		Token:     token,
		URL:       share.ShareURL(s.PublicURL, token),
		ExpiresAt: expiresAt.UTC(),
	})
}

func (s *Server) writeSharedView(w http.ResponseWriter, r *http.Request, token string) {
	entry, err := s.Codec.Decode(token)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Info("shared link rejected", "error", err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sharedViewResponse{Entry: entry})
}

// ─────────────────────────────────────────────
// Reports and preferences
// ─────────────────────────────────────────────

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	summary, err := s.Reports.Generate(r.Context(), s.Journal.Entries(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Period: period, Summary: summary})
}

func (s *Server) handleAffirmation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.Affirmations.Today(r.Context(), s.Journal.Entries()))
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := s.Onboarding.MarkSeen(r.Context()); err != nil {
			internalError(w, r, err)
			return
		}
	default:
		methodNotAllowed(w)
		return
	}

	seen, err := s.Onboarding.Seen(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, onboardingResponse{Seen: seen})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

// splitPath trims prefix and splits the rest on "/". Empty segments yield nil.
func splitPath(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	parts := strings.Split(rest, "/")
	for _, p := range parts {
		if p == "" {
			return nil
		}
	}
	return parts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrExpiredLink):
		return http.StatusGone
	case errors.Is(err, domain.ErrCorruptPayload),
		errors.Is(err, domain.ErrEmptyEntry),
		errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnknownTopic):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAnalysisInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoEntries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAnalysis),
		errors.Is(err, domain.ErrChat),
		errors.Is(err, domain.ErrExplain),
		errors.Is(err, domain.ErrSummary):
		return http.StatusBadGateway
	case errors.Is(err, journal.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the user-facing message for err.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		internalError(w, r, err)
		return
	}
	writeJSON(w, status, map[string]string{
		"error": domain.UserMessage(err),
	})
}
