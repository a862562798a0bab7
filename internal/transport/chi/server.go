package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain"
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	logpkg "github.com/kailas-cloud/casematch/internal/logger"
	cataloguc "github.com/kailas-cloud/casematch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/casematch/internal/usecase/health"
	rankuc "github.com/kailas-cloud/casematch/internal/usecase/rank"
	weightsuc "github.com/kailas-cloud/casematch/internal/usecase/weights"
	"github.com/kailas-cloud/casematch/internal/version"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Limits bounds the size of ranking responses.
type Limits struct {
	Default int
	Max     int
}

// Server implements ServerInterface.
type Server struct {
	schema        attribute.Schema
	rank          *rankuc.Service
	weights       *weightsuc.Service
	catalog       *cataloguc.Service
	health        *healthuc.Service
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	schema attribute.Schema,
	rank *rankuc.Service,
	weights *weightsuc.Service,
	catalog *cataloguc.Service,
	health *healthuc.Service,
	limits Limits,
	logger *zap.Logger,
) *Server {
	s := &Server{
		schema:  schema,
		rank:    rank,
		weights: weights,
		catalog: catalog,
		health:  health,
		limits:  limits,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		schemaMismatchHandler,
		sentinelHandler(domain.ErrInvalidWeight, http.StatusBadRequest, ErrorCodeInvalidWeight),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, ErrorCodeRecordNotFound),
		sentinelHandler(domain.ErrDuplicateRecord, http.StatusUnprocessableEntity, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrCatalogNotLoaded, http.StatusServiceUnavailable, ErrorCodeCatalogNotLoaded),
	}
	return s
}

// GetSchema handles GET /api/v1/schema.
func (s *Server) GetSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schemaToResponse(s.schema))
}

// GetWeights handles GET /api/v1/weights.
func (s *Server) GetWeights(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, weightsToResponse(s.schema, s.weights.Snapshot()))
}

// ReplaceWeights handles PUT /api/v1/weights.
func (s *Server) ReplaceWeights(w http.ResponseWriter, r *http.Request) {
	var req ReplaceWeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Weights == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "weights object is required")
		return
	}

	set, err := s.weights.Replace(r.Context(), weightsFromRequest(req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, weightsToResponse(s.schema, set))
}

// UpdateWeight handles PATCH /api/v1/weights/{attribute}.
func (s *Server) UpdateWeight(w http.ResponseWriter, r *http.Request, attributeName string) {
	var req WeightDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Weight == nil && req.Enabled == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "weight or enabled is required")
		return
	}

	updated, err := s.weights.Update(r.Context(), attributeName, weightsuc.Patch{
		Weight:  req.Weight,
		Enabled: req.Enabled,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, weightToResponse(attributeName, updated))
}

// ResetWeights handles POST /api/v1/weights/reset.
func (s *Server) ResetWeights(w http.ResponseWriter, r *http.Request) {
	set := s.weights.Reset(r.Context())
	writeJSON(w, http.StatusOK, weightsToResponse(s.schema, set))
}

// Rank handles POST /api/v1/rank.
func (s *Server) Rank(w http.ResponseWriter, r *http.Request, params RankParams) {
	limit, ok := s.resolveLimit(w, params.Limit)
	if !ok {
		return
	}
	minScore := 0.0
	if params.MinScore != nil {
		minScore = *params.MinScore
		if minScore < 0 || minScore > 1 {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "min_score must be between 0 and 1")
			return
		}
	}

	q, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	results, total, err := s.rank.Rank(r.Context(), q, rankuc.Options{
		Limit:    limit,
		MinScore: minScore,
		Explain:  params.Explain != nil && *params.Explain,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]ScoredRecordResponse, len(results))
	for i := range results {
		items[i] = resultToResponse(&results[i])
	}
	writeJSON(w, http.StatusOK, RankResponse{Results: items, Total: total, Limit: limit})
}

// ScoreRecord handles POST /api/v1/records/{key}/score.
func (s *Server) ScoreRecord(w http.ResponseWriter, r *http.Request, key string, params ScoreRecordParams) {
	q, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	res, err := s.rank.Score(r.Context(), key, q, params.Explain != nil && *params.Explain)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resultToResponse(&res))
}

// ListRecords handles GET /api/v1/records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request, params ListRecordsParams) {
	if params.Limit != nil && (*params.Limit < 1 || *params.Limit > maxPageSize) {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", maxPageSize))
		return
	}

	recs, err := s.catalog.Snapshot()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, paginateRecords(recs, params.Cursor, params.Limit))
}

func paginateRecords(recs []record.Record, cursor *string, limitPtr *int) RecordListResponse {
	limit := defaultPageSize
	if limitPtr != nil {
		limit = *limitPtr
	}

	startIdx := 0
	if cursor != nil && *cursor != "" {
		for i, rec := range recs {
			if rec.Key() == *cursor {
				startIdx = i + 1
				break
			}
		}
	}

	end := min(startIdx+limit, len(recs))
	page := recs[startIdx:end]
	hasMore := end < len(recs)

	items := make([]RecordResponse, len(page))
	for i, rec := range page {
		items[i] = recordToResponse(rec)
	}

	resp := RecordListResponse{Items: items, HasMore: hasMore}
	if hasMore && len(page) > 0 {
		c := page[len(page)-1].Key()
		resp.NextCursor = &c
	}
	return resp
}

// GetRecord handles GET /api/v1/records/{key}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request, key string) {
	rec, err := s.catalog.Get(key)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// ReloadCatalog handles POST /api/v1/catalog/reload.
func (s *Server) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	n, err := s.catalog.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{Records: n, LoadedAt: s.catalog.LoadedAt()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) resolveLimit(w http.ResponseWriter, limitPtr *int) (int, bool) {
	if limitPtr == nil {
		return s.limits.Default, true
	}
	if *limitPtr < 1 || *limitPtr > s.limits.Max {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", s.limits.Max))
		return 0, false
	}
	return *limitPtr, true
}

// decodeQuery reads {"query": {...}}. An empty body or missing query is an
// empty query, which scores every record 0.
func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (record.Query, bool) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return record.Query{}, false
	}
	q, err := record.ParseQuery(req.Query, s.schema)
	if err != nil {
		s.handleDomainError(w, r, err)
		return record.Query{}, false
	}
	return q, true
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
		domain.ErrSchemaMismatch,
		domain.ErrInvalidWeight,
		domain.ErrInvalidSchema,
		domain.ErrRecordNotFound,
		domain.ErrDuplicateRecord,
		domain.ErrCatalogNotLoaded,
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

// schemaMismatchHandler reports the offending attribute alongside the message.
func schemaMismatchHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		return false
	}
	resp := ErrorResponse{Code: ErrorCodeSchemaMismatch, Message: msg}
	var sme *domain.SchemaMismatchError
	if errors.As(err, &sme) {
		resp.Message = sme.Error()
		resp.Attribute = sme.Attribute
	}
	writeJSON(w, http.StatusBadRequest, resp)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// ParamErrorHandler reports malformed path or query parameters.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "invalid request"
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		msg = "invalid parameter " + pe.ParamName
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, msg)
}
