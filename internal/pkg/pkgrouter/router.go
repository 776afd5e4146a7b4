package pkgrouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shandysiswandi/goflightscore/internal/pkg/pkgerror"
	"github.com/shandysiswandi/goflightscore/internal/pkg/pkguid"
)

// Handler returns the value to encode as the JSON response body.
type Handler func(ctx context.Context, r *http.Request) (any, error)

// Response lets a handler pick the status code of a successful response.
type Response struct {
	Status int
	Body   any
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type internalErrorResponse struct {
	Error   string `json:"error"`
	ErrorID string `json:"error_id"`
}

type Router struct {
	mux  *chi.Mux
	uuid pkguid.StringID
}

func NewRouter(uuid pkguid.StringID) *Router {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)

	r := &Router{mux: mux, uuid: uuid}
	mux.NotFound(r.wrap(func(context.Context, *http.Request) (any, error) {
		return nil, pkgerror.NewBusiness("route not found", pkgerror.CodeNotFound)
	}))
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
	})
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) GET(path string, h Handler) {
	r.mux.Get(path, r.wrap(h))
}

func (r *Router) POST(path string, h Handler) {
	r.mux.Post(path, r.wrap(h))
}

func (r *Router) wrap(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		value, err := h(ctx, req)
		if err != nil {
			r.writeError(ctx, w, err)
			return
		}

		status := http.StatusOK
		if resp, ok := value.(Response); ok {
			status, value = resp.Status, resp.Body
		}

		body, err := json.Marshal(value)
		if err != nil {
			r.writeError(ctx, w, err)
			return
		}
		writeRaw(w, status, body)
	}
}

func (r *Router) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if be, ok := pkgerror.AsBusiness(err); ok {
		slog.WarnContext(ctx, "request failed", "request_id", middleware.GetReqID(ctx), "code", be.Code().String(), "error", err)
		writeJSON(w, StatusFromCode(be.Code()), errorResponse{Error: be.Message(), Code: be.Code().String()})
		return
	}

	errorID := r.uuid.Generate()
	slog.ErrorContext(ctx, "unhandled error", "request_id", middleware.GetReqID(ctx), "error_id", errorID, "error", err)
	writeJSON(w, http.StatusInternalServerError, internalErrorResponse{Error: "internal server error", ErrorID: errorID})
}

func StatusFromCode(code pkgerror.Code) int {
	switch code {
	case pkgerror.CodeInvalidInput:
		return http.StatusBadRequest
	case pkgerror.CodeUnprocessable:
		return http.StatusUnprocessableEntity
	case pkgerror.CodeUpstream:
		return http.StatusBadGateway
	case pkgerror.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	body, err := json.Marshal(value)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client went away
	w.Write(body)
}
