package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wpschema/wpschema/internal/hooks"
	"github.com/wpschema/wpschema/internal/page"
	"github.com/wpschema/wpschema/internal/service"
	"github.com/wpschema/wpschema/internal/web/middleware"
	"github.com/wpschema/wpschema/internal/web/response"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	response.RenderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// generate handles POST /generate
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var body pageRequest
	if err := decodeBody(r, &body); err != nil {
		response.RenderBadRequest(w, err.Error())
		return
	}
	req, ok := h.pageRequest(w, body)
	if !ok {
		return
	}

	_, schemas, err := h.svc.GenerateFor(r.Context(), req)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	response.RenderJSON(w, http.StatusOK, nonNil(schemas))
}

// post handles GET /post/{id}. Only published posts are public.
func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.RenderBadRequest(w, "Invalid post ID.")
		return
	}

	pc, err := h.svc.Resolve(r.Context(), page.Request{Kind: page.KindSingular, PostID: id})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	if !pc.Post.IsPublished() {
		response.RenderErrorWithCode(w, http.StatusNotFound, errors.New("Invalid post ID."), "rest_post_invalid_id")
		return
	}

	schemas, err := h.svc.Generate(r.Context(), pc)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	response.RenderJSON(w, http.StatusOK, nonNil(schemas))
}

// head handles GET /head and returns the script tags for the page
func (h *Handler) head(w http.ResponseWriter, r *http.Request) {
	body, err := queryRequest(r.URL.Query())
	if err != nil {
		response.RenderBadRequest(w, err.Error())
		return
	}
	req, ok := h.pageRequest(w, body)
	if !ok {
		return
	}

	pc, err := h.svc.Resolve(r.Context(), req)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	if pc.Post != nil && !pc.Post.IsPublished() {
		response.RenderErrorWithCode(w, http.StatusNotFound, errors.New("Invalid post ID."), "rest_post_invalid_id")
		return
	}

	html, err := h.svc.RenderHead(r.Context(), pc)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	response.RenderHTML(w, http.StatusOK, html)
}

func (h *Handler) hooks(w http.ResponseWriter, r *http.Request) {
	response.RenderJSON(w, http.StatusOK, hooks.Documentation())
}

// flushCache handles DELETE /cache
func (h *Handler) flushCache(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.FlushCache(r.Context()); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	response.RenderJSON(w, http.StatusOK, map[string]bool{"flushed": true})
}

func (h *Handler) pageRequest(w http.ResponseWriter, body pageRequest) (page.Request, bool) {
	body = body.canonical()
	if err := h.validate.Struct(body); err != nil {
		response.RenderError(w, http.StatusUnprocessableEntity, err)
		return page.Request{}, false
	}
	req, err := body.toPage()
	if err != nil {
		response.RenderBadRequest(w, err.Error())
		return page.Request{}, false
	}
	return req, true
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case service.IsNotFound(err):
		response.RenderNotFound(w, "The requested content does not exist.")
	case errors.Is(err, service.ErrBadRequest):
		response.RenderBadRequest(w, err.Error())
	default:
		h.logger.Error("schema request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		response.RenderInternalError(w, err)
	}
}

// nonNil makes an empty result encode as [] rather than null
func nonNil(schemas []map[string]any) []map[string]any {
	if schemas == nil {
		return []map[string]any{}
	}
	return schemas
}
