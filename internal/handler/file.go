package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"docuvault/internal/config"
	"docuvault/internal/domain/services"
	"docuvault/internal/httputil"
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService services.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService services.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// Upload stores a file into a folder. Multipart form with a "file" part and
// an optional comma-separated "tags" field.
// POST /api/folders/{id}/files
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	folderID := r.PathValue("id")
	if folderID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer part.Close()

	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, err := h.fileService.Upload(r.Context(), &services.UploadFileRequest{
		FolderID:    folderID,
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Tags:        tags,
		Content:     part,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetFile retrieves a file record
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	file, err := h.fileService.GetFile(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// Download streams the file's content
// GET /api/files/{id}/content
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	file, rc, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	if file.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Size))
	}

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; nothing left to do but log.
		h.logger.Warn("file download aborted", "file_id", id, "error", err)
	}
}

// updateFileRequest carries the PATCH-able file fields
type updateFileRequest struct {
	Name *string   `json:"name,omitempty"`
	Tags *[]string `json:"tags,omitempty"`
}

// UpdateFile renames a file and/or replaces its tags
// PATCH /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	var req updateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == nil && req.Tags == nil {
		httputil.RespondError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	file, err := h.fileService.GetFile(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	if req.Name != nil {
		file, err = h.fileService.RenameFile(r.Context(), id, *req.Name)
		if err != nil {
			handleError(w, err)
			return
		}
	}
	if req.Tags != nil {
		file, err = h.fileService.UpdateTags(r.Context(), id, *req.Tags)
		if err != nil {
			handleError(w, err)
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile removes a single file
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
