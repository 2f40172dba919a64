package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/usecase"
	"manifest-service/pkg/logger"
	"manifest-service/pkg/utils"
)

const maxUploadBytes = 64 << 20

// ManifestHandler exposes the manifest over HTTP
type ManifestHandler struct {
	manifest *usecase.ManifestService
	pipeline *usecase.IngestionPipeline
	view     *usecase.ViewState
	exporter *usecase.ExportService
	logger   logger.Logger
}

// NewManifestHandler creates a new manifest handler
func NewManifestHandler(
	manifest *usecase.ManifestService,
	pipeline *usecase.IngestionPipeline,
	view *usecase.ViewState,
	exporter *usecase.ExportService,
	logger logger.Logger,
) *ManifestHandler {
	return &ManifestHandler{
		manifest: manifest,
		pipeline: pipeline,
		view:     view,
		exporter: exporter,
		logger:   logger,
	}
}

// Register registers the manifest routes with the chi router
func (h *ManifestHandler) Register(r chi.Router) {
	r.Route("/api/manifest", func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)

		r.Get("/", h.handleGetManifest)
		r.Post("/documents", h.handleUploadDocuments)
		r.Post("/passengers", h.handleAddPassenger)
		r.Delete("/passengers", h.handleClear)
		r.Patch("/passengers/{id}", h.handleUpdatePassenger)
		r.Delete("/passengers/{id}", h.handleDeletePassenger)
		r.Post("/undo", h.handleUndo)
		r.Post("/redo", h.handleRedo)
		r.Post("/sort", h.handleSort)
		r.Put("/filter", h.handleFilter)
		r.Get("/export", h.handleExport)
	})
}

type manifestResponse struct {
	Records  []entity.PassengerRecord `json:"records"`
	Total    int                      `json:"total"`
	History  entity.HistoryState      `json:"history"`
	Progress entity.IngestionProgress `json:"progress"`
	Sort     entity.SortConfig        `json:"sort"`
	Filter   filterPayload            `json:"filter"`
}

type filterPayload struct {
	Field     entity.PassengerField `json:"field"`
	StartDate string                `json:"startDate"`
	EndDate   string                `json:"endDate"`
}

type updateFieldRequest struct {
	Field entity.PassengerField `json:"field"`
	Value string                `json:"value"`
}

type sortRequest struct {
	Key entity.PassengerField `json:"key"`
}

func (h *ManifestHandler) state() manifestResponse {
	snapshot := h.manifest.Snapshot()
	sortConfig, filter := h.view.Current()

	records := h.view.Apply(snapshot)
	if records == nil {
		records = []entity.PassengerRecord{}
	}

	return manifestResponse{
		Records:  records,
		Total:    snapshot.Len(),
		History:  h.manifest.HistoryState(),
		Progress: h.pipeline.Progress(),
		Sort:     sortConfig,
		Filter: filterPayload{
			Field:     filter.Field,
			StartDate: formatISODate(filter.StartDate),
			EndDate:   formatISODate(filter.EndDate),
		},
	}
}

func (h *ManifestHandler) handleGetManifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

func (h *ManifestHandler) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	docs := make([]entity.Document, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("cannot read %s", fh.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("cannot read %s", fh.Filename))
			return
		}

		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(data)
		}
		docs = append(docs, entity.Document{FileName: fh.Filename, MimeType: mimeType, Data: data})
	}

	ids := h.pipeline.Start(r.Context(), docs)
	h.logger.Info("Documents accepted", "files", len(docs), "requestID", middleware.GetReqID(r.Context()))

	writeJSON(w, http.StatusAccepted, map[string][]string{"ids": ids})
}

func (h *ManifestHandler) handleAddPassenger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.manifest.AddManual())
}

func (h *ManifestHandler) handleUpdatePassenger(w http.ResponseWriter, r *http.Request) {
	var req updateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.manifest.UpdateField(chi.URLParam(r, "id"), req.Field, req.Value)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *ManifestHandler) handleDeletePassenger(w http.ResponseWriter, r *http.Request) {
	if err := h.manifest.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ManifestHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.manifest.Clear()
	writeJSON(w, http.StatusOK, h.state())
}

func (h *ManifestHandler) handleUndo(w http.ResponseWriter, r *http.Request) {
	h.manifest.Undo()
	writeJSON(w, http.StatusOK, h.state())
}

func (h *ManifestHandler) handleRedo(w http.ResponseWriter, r *http.Request) {
	h.manifest.Redo()
	writeJSON(w, http.StatusOK, h.state())
}

func (h *ManifestHandler) handleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.view.ToggleSort(req.Key); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state())
}

func (h *ManifestHandler) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := utils.ParseISODate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		return
	}
	end, err := utils.ParseISODate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
		return
	}

	if err := h.view.SetFilter(entity.FilterCriteria{Field: req.Field, StartDate: start, EndDate: end}); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state())
}

func (h *ManifestHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	file, err := h.exporter.Export(r.Context(), h.view.Apply(h.manifest.Snapshot()))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		h.logger.Warn("Failed to write export", "file", file.FileName, "error", err)
	}
}

func (h *ManifestHandler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrUnknownField),
		errors.Is(err, usecase.ErrInvalidFilter),
		errors.Is(err, usecase.ErrUnsupportedField):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrNothingToExport):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func formatISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(utils.ISO_DATE_LAYOUT)
}
