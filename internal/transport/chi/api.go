package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// RankParams defines query parameters for POST /api/v1/rank.
type RankParams struct {
	Limit    *int     `form:"limit,omitempty" json:"limit,omitempty"`
	MinScore *float64 `form:"min_score,omitempty" json:"min_score,omitempty"`
	Explain  *bool    `form:"explain,omitempty" json:"explain,omitempty"`
}

// ScoreRecordParams defines query parameters for POST /api/v1/records/{key}/score.
type ScoreRecordParams struct {
	Explain *bool `form:"explain,omitempty" json:"explain,omitempty"`
}

// ListRecordsParams defines query parameters for GET /api/v1/records.
type ListRecordsParams struct {
	Cursor *string `form:"cursor,omitempty" json:"cursor,omitempty"`
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

// ServerInterface lists every HTTP operation.
type ServerInterface interface {
	// GET /api/v1/schema
	GetSchema(w http.ResponseWriter, r *http.Request)
	// GET /api/v1/weights
	GetWeights(w http.ResponseWriter, r *http.Request)
	// PUT /api/v1/weights
	ReplaceWeights(w http.ResponseWriter, r *http.Request)
	// PATCH /api/v1/weights/{attribute}
	UpdateWeight(w http.ResponseWriter, r *http.Request, attribute string)
	// POST /api/v1/weights/reset
	ResetWeights(w http.ResponseWriter, r *http.Request)
	// POST /api/v1/rank
	Rank(w http.ResponseWriter, r *http.Request, params RankParams)
	// GET /api/v1/records
	ListRecords(w http.ResponseWriter, r *http.Request, params ListRecordsParams)
	// GET /api/v1/records/{key}
	GetRecord(w http.ResponseWriter, r *http.Request, key string)
	// POST /api/v1/records/{key}/score
	ScoreRecord(w http.ResponseWriter, r *http.Request, key string, params ScoreRecordParams)
	// POST /api/v1/catalog/reload
	ReloadCatalog(w http.ResponseWriter, r *http.Request)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a path or query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ServerOptions configures route registration.
type ServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions registers every route of si on the base router.
func HandlerWithOptions(si ServerInterface, options ServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := &serverWrapper{handler: si, errorHandler: options.ErrorHandlerFunc}

	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/schema", si.GetSchema)
		r.Get("/weights", si.GetWeights)
		r.Put("/weights", si.ReplaceWeights)
		r.Post("/weights/reset", si.ResetWeights)
		r.Patch("/weights/{attribute}", wrapper.UpdateWeight)
		r.Post("/rank", wrapper.Rank)
		r.Get("/records", wrapper.ListRecords)
		r.Get("/records/{key}", wrapper.GetRecord)
		r.Post("/records/{key}/score", wrapper.ScoreRecord)
		r.Post("/catalog/reload", si.ReloadCatalog)
	})

	return r
}

// serverWrapper binds path and query parameters before calling the handler.
type serverWrapper struct {
	handler      ServerInterface
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

func (sw *serverWrapper) UpdateWeight(w http.ResponseWriter, r *http.Request) {
	attribute, ok := sw.pathParam(w, r, "attribute")
	if !ok {
		return
	}
	sw.handler.UpdateWeight(w, r, attribute)
}

func (sw *serverWrapper) Rank(w http.ResponseWriter, r *http.Request) {
	var params RankParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &params.Limit); err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "min_score", q, &params.MinScore); err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: "min_score", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "explain", q, &params.Explain); err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: "explain", Err: err})
		return
	}
	sw.handler.Rank(w, r, params)
}

func (sw *serverWrapper) ListRecords(w http.ResponseWriter, r *http.Request) {
	var params ListRecordsParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "cursor", q, &params.Cursor); err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: "cursor", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &params.Limit); err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	sw.handler.ListRecords(w, r, params)
}

func (sw *serverWrapper) GetRecord(w http.ResponseWriter, r *http.Request) {
	key, ok := sw.pathParam(w, r, "key")
	if !ok {
		return
	}
	sw.handler.GetRecord(w, r, key)
}

func (sw *serverWrapper) ScoreRecord(w http.ResponseWriter, r *http.Request) {
	key, ok := sw.pathParam(w, r, "key")
	if !ok {
		return
	}
	var params ScoreRecordParams
	if err := runtime.BindQueryParameter("form", true, false, "explain", r.URL.Query(), &params.Explain); err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: "explain", Err: err})
		return
	}
	sw.handler.ScoreRecord(w, r, key, params)
}

func (sw *serverWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return v, true
}
