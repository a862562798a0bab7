package chi

import (
	"time"

	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/ranking"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/similarity"
	"github.com/kailas-cloud/casematch/internal/domain/weight"
)

// ErrorCode is a machine-readable error classification.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeSchemaMismatch   ErrorCode = "schema_mismatch"
	ErrorCodeInvalidWeight    ErrorCode = "invalid_weight"
	ErrorCodeRecordNotFound   ErrorCode = "record_not_found"
	ErrorCodeCatalogNotLoaded ErrorCode = "catalog_not_loaded"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Attribute string    `json:"attribute,omitempty"`
}

// AttributeResponse describes one schema attribute.
type AttributeResponse struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Values []string `json:"values,omitempty"`
}

// SchemaResponse is the body of GET /api/v1/schema.
type SchemaResponse struct {
	Attributes []AttributeResponse `json:"attributes"`
}

// WeightDTO is one attribute's weight configuration.
type WeightDTO struct {
	Weight  *float64 `json:"weight,omitempty"`
	Enabled *bool    `json:"enabled,omitempty"`
}

// WeightResponse is one attribute's configuration as served.
type WeightResponse struct {
	Attribute string  `json:"attribute"`
	Weight    float64 `json:"weight"`
	Enabled   bool    `json:"enabled"`
	Effective float64 `json:"effective"`
}

// WeightsResponse is the full weight configuration in schema order.
type WeightsResponse struct {
	Weights []WeightResponse `json:"weights"`
}

// ReplaceWeightsRequest is the body of PUT /api/v1/weights.
type ReplaceWeightsRequest struct {
	Weights map[string]WeightDTO `json:"weights"`
}

// QueryRequest carries a partial record to compare against the catalog.
type QueryRequest struct {
	Query map[string]any `json:"query"`
}

// ContributionResponse is one attribute's share of a score.
type ContributionResponse struct {
	Attribute  string  `json:"attribute"`
	Kind       string  `json:"kind"`
	Similarity float64 `json:"similarity"`
	Weight     float64 `json:"weight"`
	Skipped    string  `json:"skipped,omitempty"`
}

// ScoredRecordResponse is a single ranked record.
type ScoredRecordResponse struct {
	Key         string                 `json:"key"`
	Description string                 `json:"description,omitempty"`
	Values      map[string]any         `json:"values"`
	Score       float64                `json:"score"`
	Percent     int                    `json:"percent"`
	Matched     []string               `json:"matched"`
	Breakdown   []ContributionResponse `json:"breakdown,omitempty"`
}

// RankResponse is the body of POST /api/v1/rank.
type RankResponse struct {
	Results []ScoredRecordResponse `json:"results"`
	Total   int                    `json:"total"`
	Limit   int                    `json:"limit"`
}

// RecordResponse is a catalog record.
type RecordResponse struct {
	Key         string         `json:"key"`
	Description string         `json:"description,omitempty"`
	Values      map[string]any `json:"values"`
}

// RecordListResponse is a cursor-paginated page of records.
type RecordListResponse struct {
	Items      []RecordResponse `json:"items"`
	HasMore    bool             `json:"has_more"`
	NextCursor *string          `json:"next_cursor,omitempty"`
}

// ReloadResponse is the body of POST /api/v1/catalog/reload.
type ReloadResponse struct {
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func schemaToResponse(s attribute.Schema) SchemaResponse {
	attrs := make([]AttributeResponse, s.Len())
	for i := range s.Len() {
		a := s.At(i)
		ar := AttributeResponse{Name: a.Name(), Kind: string(a.Kind())}
		switch a.Kind() {
		case attribute.Numeric:
			lo, hi := a.Min(), a.Max()
			ar.Min, ar.Max = &lo, &hi
		case attribute.Categorical:
			ar.Values = a.AllowedValues()
		}
		attrs[i] = ar
	}
	return SchemaResponse{Attributes: attrs}
}

func weightsToResponse(s attribute.Schema, set weight.Set) WeightsResponse {
	out := make([]WeightResponse, 0, s.Len())
	for _, name := range s.Names() {
		w, _ := set.Get(name)
		out = append(out, weightToResponse(name, w))
	}
	return WeightsResponse{Weights: out}
}

func weightToResponse(name string, w weight.Weight) WeightResponse {
	return WeightResponse{Attribute: name, Weight: w.Value, Enabled: w.Enabled, Effective: w.Effective()}
}

// weightsFromRequest fills omitted fields: weight defaults to 1, enabled to true.
func weightsFromRequest(req ReplaceWeightsRequest) map[string]weight.Weight {
	m := make(map[string]weight.Weight, len(req.Weights))
	for name, dto := range req.Weights {
		w := weight.Weight{Value: 1, Enabled: true}
		if dto.Weight != nil {
			w.Value = *dto.Weight
		}
		if dto.Enabled != nil {
			w.Enabled = *dto.Enabled
		}
		m[name] = w
	}
	return m
}

func recordValues(r record.Record) map[string]any {
	vals := r.Values()
	out := make(map[string]any, len(vals))
	for name, v := range vals {
		out[name] = v.Any()
	}
	return out
}

func recordToResponse(r record.Record) RecordResponse {
	return RecordResponse{Key: r.Key(), Description: r.Description(), Values: recordValues(r)}
}

func resultToResponse(res *ranking.Result) ScoredRecordResponse {
	rec := res.Record()
	matched := res.Matched()
	if matched == nil {
		matched = []string{}
	}
	out := ScoredRecordResponse{
		Key:         rec.Key(),
		Description: rec.Description(),
		Values:      recordValues(rec),
		Score:       res.Score(),
		Percent:     res.Percent(),
		Matched:     matched,
	}
	if exp := res.Explanation(); exp != nil {
		out.Breakdown = breakdownToResponse(exp)
	}
	return out
}

func breakdownToResponse(exp *similarity.Explanation) []ContributionResponse {
	out := make([]ContributionResponse, len(exp.Contributions))
	for i, c := range exp.Contributions {
		out[i] = ContributionResponse{
			Attribute:  c.Attribute,
			Kind:       string(c.Kind),
			Similarity: c.Similarity,
			Weight:     c.Weight,
			Skipped:    string(c.Skipped),
		}
	}
	return out
}
