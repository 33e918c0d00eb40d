package daemon

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"labeld/internal/api"
	"labeld/internal/imagestore"
	"labeld/internal/logging"
)

const (
	defaultPageLimit      = 50
	defaultUnlabeledLimit = 50
)

func (d *Daemon) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.WithContext(ctx, d.logger).Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()))
	})
}

func (d *Daemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *Daemon) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, d.Status())
}

func (d *Daemon) handleAllocate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req api.AllocateRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	lease, err := d.service.Allocate(r.Context(), projectID, req.ImageID)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	if lease == nil {
		d.metrics.AllocationsEmpty.Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	d.metrics.AllocationsGranted.Inc()
	writeJSON(w, http.StatusOK, lease)
}

func (d *Daemon) handleImport(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req api.ImportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.URLs) == 0 && len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "urls or entries required")
		return
	}

	result, err := d.service.Import(r.Context(), projectID, req)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	d.metrics.ImagesImported.Add(float64(len(result.Created)))
	d.metrics.BatchFailures.Add(float64(len(result.Failed)))
	writeJSON(w, http.StatusAccepted, result)
}

func (d *Daemon) handleStub(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req api.StubRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename required")
		return
	}

	image, err := d.service.RegisterStub(r.Context(), projectID, req)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	d.metrics.ImagesImported.Inc()
	writeJSON(w, http.StatusCreated, image)
}

func (d *Daemon) handleList(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	images, err := d.service.List(r.Context(), projectID)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ImageListResponse{Images: orEmpty(images)})
}

func (d *Daemon) handleListLabeled(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", defaultPageLimit)

	images, err := d.service.ListLabeled(r.Context(), projectID, page, limit)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ImageListResponse{Images: orEmpty(images)})
}

func (d *Daemon) handleListUnlabeled(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	limit := queryInt(r, "limit", defaultUnlabeledLimit)

	stubs, err := d.service.ListUnlabeled(r.Context(), projectID, limit)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	if stubs == nil {
		stubs = []api.Stub{}
	}
	writeJSON(w, http.StatusOK, api.StubListResponse{Stubs: stubs})
}

func (d *Daemon) handleLookup(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	image, err := d.service.Lookup(r.Context(), projectID, name)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, image)
}

func (d *Daemon) handleMembership(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req api.IDsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	images, err := d.service.Membership(r.Context(), projectID, req.IDs)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ImageListResponse{Images: orEmpty(images)})
}

func (d *Daemon) handleDeleteByIDs(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req api.IDsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deleted, err := d.service.DeleteByIDs(r.Context(), projectID, req.IDs)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.DeleteResponse{Deleted: deleted})
}

func (d *Daemon) handleMove(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req api.MoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NewProjectID <= 0 {
		writeError(w, http.StatusBadRequest, "newProjectId required")
		return
	}

	moved, err := d.service.Move(r.Context(), projectID, req)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MoveResponse{Moved: moved})
}

func (d *Daemon) handleRehome(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req api.RehomeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := d.service.Rehome(r.Context(), projectID, req)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

func (d *Daemon) handleStats(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	summary, err := d.service.Stats(r.Context(), projectID)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (d *Daemon) handleDescribe(w http.ResponseWriter, r *http.Request) {
	imageID, ok := pathID(w, r, "imageID")
	if !ok {
		return
	}
	image, err := d.service.Describe(r.Context(), imageID)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	if image == nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	writeJSON(w, http.StatusOK, image)
}

func (d *Daemon) handleLabel(w http.ResponseWriter, r *http.Request) {
	imageID, ok := pathID(w, r, "imageID")
	if !ok {
		return
	}
	var req api.LabelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := d.service.SubmitLabel(r.Context(), imageID, req.LabelData); err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	d.metrics.LabelsSubmitted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (d *Daemon) handleLabeled(w http.ResponseWriter, r *http.Request) {
	imageID, ok := pathID(w, r, "imageID")
	if !ok {
		return
	}
	var req api.LabeledRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := d.service.SetLabeled(r.Context(), imageID, req.Labeled); err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d *Daemon) handleDelete(w http.ResponseWriter, r *http.Request) {
	imageID, ok := pathID(w, r, "imageID")
	if !ok {
		return
	}
	existed, err := d.service.Delete(r.Context(), imageID)
	if err != nil {
		d.writeStoreError(w, r, err)
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeStoreError maps the store error taxonomy onto HTTP statuses: missing
// records are 404, unparseable payloads 422, anything else a transient 502.
func (d *Daemon) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, imagestore.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, imagestore.ErrMalformedPayload):
		d.metrics.MalformedPayloads.Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logging.WithContext(r.Context(), d.logger).Error("store failure",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "store unavailable")
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// decodeOptional tolerates an absent or empty body, leaving dst zeroed.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: message})
}

func orEmpty(images []api.Image) []api.Image {
	if images == nil {
		return []api.Image{}
	}
	return images
}
