package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/okulbul/okulbul/internal/domain"
	"github.com/okulbul/okulbul/internal/domain/search/request"
	assistantuc "github.com/okulbul/okulbul/internal/usecase/assistant"
	healthuc "github.com/okulbul/okulbul/internal/usecase/health"
	queryuc "github.com/okulbul/okulbul/internal/usecase/query"
	refreshuc "github.com/okulbul/okulbul/internal/usecase/refresh"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API over chi.
type Server struct {
	search        *queryuc.Service
	assistant     *assistantuc.Service
	refresh       *refreshuc.Service
	health        *healthuc.Service
	bounds        request.Bounds
	queryTimeout  time.Duration
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *queryuc.Service,
	assistant *assistantuc.Service,
	refresh *refreshuc.Service,
	health *healthuc.Service,
	bounds request.Bounds,
	queryTimeout time.Duration,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:       search,
		assistant:    assistant,
		refresh:      refresh,
		health:       health,
		bounds:       bounds,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrAmbiguousMode, http.StatusBadRequest, CodeAmbiguousMode),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrSnapshotUnavailable, http.StatusServiceUnavailable, CodeSnapshotUnavailable),
		sentinelHandler(domain.ErrRefreshInProgress, http.StatusConflict, CodeRefreshInProgress),
		sentinelHandler(domain.ErrRefreshFailed, http.StatusBadGateway, CodeRefreshFailed),
		sentinelHandler(domain.ErrAssistantUnavailable, http.StatusBadGateway, CodeAssistantUnavailable),
	}
	return s
}

// Routes mounts the API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.SearchSchools)
	r.Post("/v1/assistant/search", s.AssistantSearch)
	r.Post("/v1/admin/refresh", s.TriggerRefresh)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchSchools handles POST /v1/search.
func (s *Server) SearchSchools(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := request.New(body.toParams(), s.bounds)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, cancel := s.queryContext(r.Context())
	defer cancel()

	page, err := s.search.Search(ctx, &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// AssistantSearch handles POST /v1/assistant/search.
func (s *Server) AssistantSearch(w http.ResponseWriter, r *http.Request) {
	var body AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := s.queryContext(r.Context())
	defer cancel()

	page, criteria, err := s.assistant.Ask(ctx, body.Utterance)
	if errors.Is(err, domain.ErrCriteriaIncomplete) {
		// 422 with the partial criteria so the client can prompt for the rest.
		writeJSON(w, http.StatusUnprocessableEntity, CriteriaIncompleteResponse{
			Code:     CodeCriteriaIncomplete,
			Message:  domain.ErrCriteriaIncomplete.Error(),
			Criteria: criteria,
		})
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AssistantResponse{
		Criteria: criteria,
		Results:  page,
	})
}

// TriggerRefresh handles POST /v1/admin/refresh. It runs a projection cycle
// inline and reports its stats; a cycle already in flight yields 409.
func (s *Server) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	stats, err := s.refresh.Refresh(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshToResponse(stats))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:          string(report.Status),
		Checks:          checks,
		SnapshotVersion: report.SnapshotVersion,
		SnapshotAgeSec:  int64(report.SnapshotAge.Seconds()),
		SnapshotRecords: report.SnapshotRecords,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrAmbiguousMode,
		domain.ErrSnapshotUnavailable,
		domain.ErrRefreshInProgress,
		domain.ErrRefreshFailed,
		domain.ErrAssistantUnavailable,
		domain.ErrCriteriaIncomplete,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
