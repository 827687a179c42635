package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wgomg/aura/internal/corpus"
	"github.com/wgomg/aura/internal/dispatch"
	"github.com/wgomg/aura/internal/geo"
	"github.com/wgomg/aura/internal/utils"
	"github.com/wgomg/aura/internal/utils/httputils"
)

// Dispatcher is the part of dispatch.Service the handlers use.
type Dispatcher interface {
	Match(ctx context.Context, query string) (*dispatch.Match, error)
	Lookup(id string) (corpus.CommandRecord, error)
	Examples(n int) []string
}

type Handler struct {
	logger    *utils.Logger
	service   Dispatcher
	resolver  *geo.Resolver
	validator *requestValidator
}

func NewHandler(logger *utils.Logger, service Dispatcher, resolver *geo.Resolver) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		resolver:  resolver,
		validator: newRequestValidator(),
	}
}

// ProcessCommand answers with the bare matched record plus original_query.
// How it matched travels in response headers only.
func (h *Handler) ProcessCommand(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	reqID := utils.RequestID(ctx)

	var req CommandRequest
	if err := h.decode(w, r, &req); err != nil {
		h.logger.Error(reqID, "Invalid command request: %v", err)
		httputils.HandleError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputils.JSONError(w, http.StatusBadRequest, "No text provided")
		return
	}

	match, err := h.service.Match(ctx, req.Text)
	if err != nil {
		h.logMatchError(reqID, req.Text, err)
		httputils.HandleError(w, err)
		return
	}

	h.logger.Info(reqID, "Received: '%s' -> Predicted: %s", utils.Truncate(req.Text, 120), match.Intent)

	w.Header().Set(headerMatchMethod, string(match.Method))
	w.Header().Set(headerMatchScore, strconv.FormatFloat(match.Score, 'f', 4, 64))
	if err := httputils.JSONResponse(w, http.StatusOK, match); err != nil {
		h.logger.Error(reqID, "Error sending response: %v", err)
	}
}

func (h *Handler) GetExamples(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputils.JSONResponse(w, http.StatusOK, h.service.Examples(defaultExamples)); err != nil {
		h.logger.Error(utils.RequestID(r.Context()), "Error sending response: %v", err)
	}
}

func (h *Handler) Match(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	reqID := utils.RequestID(ctx)

	var req CommandRequest
	if err := h.decode(w, r, &req); err != nil {
		h.logger.Error(reqID, "Invalid match request: %v", err)
		httputils.HandleError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputils.HandleError(w, err)
		return
	}

	match, err := h.service.Match(ctx, req.Text)
	if err != nil {
		h.logMatchError(reqID, req.Text, err)
		httputils.HandleError(w, err)
		return
	}

	meta := MatchMeta{Method: match.Method, Score: match.Score}
	if err := httputils.DataResponse(w, match, meta); err != nil {
		h.logger.Error(reqID, "Error sending response: %v", err)
	}
}

func (h *Handler) Examples(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	reqID := utils.RequestID(r.Context())

	q := ExamplesQuery{N: defaultExamples}
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputils.JSONError(w, http.StatusBadRequest, "n must be an integer")
			return
		}
		q.N = n
	}
	if err := h.validator.Struct(q); err != nil {
		httputils.HandleError(w, err)
		return
	}

	if err := httputils.DataResponse(w, h.service.Examples(q.N), nil); err != nil {
		h.logger.Error(reqID, "Error sending response: %v", err)
	}
}

func (h *Handler) Command(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	reqID := utils.RequestID(r.Context())

	rec, err := h.lookup(p)
	if err != nil {
		httputils.HandleError(w, err)
		return
	}

	if err := httputils.DataResponse(w, rec, nil); err != nil {
		h.logger.Error(reqID, "Error sending response: %v", err)
	}
}

func (h *Handler) CommandLocation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	reqID := utils.RequestID(r.Context())

	rec, err := h.lookup(p)
	if err != nil {
		httputils.HandleError(w, err)
		return
	}

	loc := h.resolver.Resolve(rec)
	h.logger.Debug(reqID, "Resolved %s to %s (%.5f, %.5f)", rec.ID, loc.Source, loc.Lat, loc.Lon)

	if err := httputils.DataResponse(w, loc, nil); err != nil {
		h.logger.Error(reqID, "Error sending response: %v", err)
	}
}

func (h *Handler) lookup(p httprouter.Params) (corpus.CommandRecord, error) {
	param := CommandIDParam{ID: p.ByName("id")}
	if err := h.validator.Struct(param); err != nil {
		return corpus.CommandRecord{}, err
	}
	return h.service.Lookup(param.ID)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := httputils.LogRequestBody(r, h.logger, utils.RequestID(r.Context())); err != nil {
		return err
	}
	return httputils.DecodeJSON(w, r, v)
}

func (h *Handler) logMatchError(reqID *string, text string, err error) {
	if httputils.StatusCode(err) >= http.StatusInternalServerError {
		h.logger.Error(reqID, "Error processing command '%s': %v", utils.Truncate(text, 120), err)
		return
	}
	h.logger.Debug(reqID, "Rejected command '%s': %v", utils.Truncate(text, 120), err)
}
