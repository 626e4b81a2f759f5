package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/pawfect-mate/backend/internal/conversation"
	"github.com/pawfect-mate/backend/internal/engine"
	"github.com/pawfect-mate/backend/internal/metrics"
	"github.com/pawfect-mate/backend/internal/search"
)

const snippetLength = 200

type Server struct {
	Engine *engine.Engine
	Logger *logrus.Entry
	Router chi.Router
}

func NewServer(eng *engine.Engine, logger *logrus.Entry) *Server {
	s := &Server{
		Engine: eng,
		Logger: logger.WithField("component", "api"),
		Router: chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(s.requestLogger)
	s.Router.Use(metrics.Middleware())

	s.Router.Post("/ask", s.handleAsk)
	s.Router.Post("/feedback", s.handleFeedback)

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
	})

	s.Router.Handle("/metrics", promhttp.Handler())
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	ConversationID string         `json:"conversation_id"`
	Answer         *engine.Answer `json:"answer"`
}

type FeedbackRequest struct {
	ConversationID string `json:"conversation_id"`
	Feedback       int    `json:"feedback"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultView `json:"results"`
}

type SearchResultView struct {
	ID        string  `json:"id"`
	BreedName string  `json:"breed_name,omitempty"`
	Score     float64 `json:"score"`
	Text      string  `json:"snippet"`
}

type StatusResponse struct {
	Documents int          `json:"documents"`
	Stats     engine.Stats `json:"stats"`
	Uptime    string       `json:"uptime"`
}

// Handlers

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	answer, err := s.Engine.Ask(r.Context(), req.Question)
	switch {
	case errors.Is(err, engine.ErrEmptyQuestion):
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Question is required"})
		return
	case err != nil:
		s.Logger.WithError(err).Error("Failed to answer question")
		jsonResponse(w, http.StatusBadGateway, ErrorResponse{Error: "Failed to generate answer"})
		return
	}

	jsonResponse(w, http.StatusOK, AskResponse{ConversationID: answer.ConversationID, Answer: answer})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	err := s.Engine.Feedback(r.Context(), req.ConversationID, req.Feedback)
	switch {
	case errors.Is(err, conversation.ErrNotFound):
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "Invalid conversation_id"})
		return
	case errors.Is(err, engine.ErrInvalidFeedback):
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Feedback must be -1 or 1"})
		return
	case err != nil:
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusOK, MessageResponse{Message: "Feedback received"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := params.Get("q")
	if query == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'q' is required"})
		return
	}

	opts, err := parseSearchOptions(params)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	hits := s.Engine.SearchScored(query, opts)

	response := SearchResponse{
		Query:   query,
		Results: make([]SearchResultView, len(hits)),
	}

	for i, hit := range hits {
		txt := hit.Document.Value("description")
		if txt == "" {
			txt = hit.Document.Value("temperament")
		}
		if runes := []rune(txt); len(runes) > snippetLength {
			txt = string(runes[:snippetLength]) + "..."
		}
		response.Results[i] = SearchResultView{
			ID:        hit.Document.ID,
			BreedName: hit.Document.Value("breed_name"),
			Score:     hit.Score,
			Text:      txt,
		}
	}

	jsonResponse(w, http.StatusOK, response)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Engine.Stats()

	jsonResponse(w, http.StatusOK, StatusResponse{
		Documents: s.Engine.DocumentCount(),
		Stats:     stats,
		Uptime:    time.Since(stats.StartTime).Round(time.Second).String(),
	})
}

// parseSearchOptions reads k, repeated filter=field:value and
// boost=field:weight parameters.
func parseSearchOptions(params map[string][]string) (search.SearchOptions, error) {
	var opts search.SearchOptions

	if ks := params["k"]; len(ks) > 0 && ks[0] != "" {
		k, err := strconv.Atoi(ks[0])
		if err != nil {
			return opts, errors.New("parameter 'k' must be an integer")
		}
		opts.K = k
	}

	for _, raw := range params["filter"] {
		field, value, ok := strings.Cut(raw, ":")
		if !ok || field == "" {
			return opts, errors.New("filter must look like field:value")
		}
		if opts.Filters == nil {
			opts.Filters = make(map[string]string)
		}
		opts.Filters[field] = value
	}

	for _, raw := range params["boost"] {
		field, weight, ok := strings.Cut(raw, ":")
		if !ok || field == "" {
			return opts, errors.New("boost must look like field:weight")
		}
		b, err := strconv.ParseFloat(weight, 64)
		if err != nil || math.IsInf(b, 0) || math.IsNaN(b) {
			return opts, errors.New("boost weight must be a finite number")
		}
		if opts.Boosts == nil {
			opts.Boosts = make(map[string]float64)
		}
		opts.Boosts[field] = b
	}

	return opts, nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.Logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
		}).Debug("Handled request")
	})
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "Failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}
