package handler

import (
	"log/slog"
	"net/http"

	"docuvault/internal/domain/models"
	"docuvault/internal/domain/services"
	"docuvault/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// folderView decorates a folder with its usage against the file ceiling.
type folderView struct {
	models.Folder
	UsagePercentage float64 `json:"usage_percentage"`
}

func newFolderView(f models.Folder) folderView {
	return folderView{Folder: f, UsagePercentage: services.UsagePercentage(&f)}
}

// folderDetailsView adds usage to the requested folder; the ancestor chain
// stays plain.
type folderDetailsView struct {
	*models.FolderDetails
	UsagePercentage float64 `json:"usage_percentage"`
}

type folderContentsView struct {
	Folder     *folderView   `json:"folder,omitempty"`
	Subfolders []folderView  `json:"subfolders"`
	Files      []models.File `json:"files"`
}

func newFolderContentsView(contents *models.FolderContents) *folderContentsView {
	view := &folderContentsView{
		Subfolders: make([]folderView, 0, len(contents.Subfolders)),
		Files:      contents.Files,
	}
	if contents.Folder != nil {
		fv := newFolderView(*contents.Folder)
		view.Folder = &fv
	}
	for _, sub := range contents.Subfolders {
		view.Subfolders = append(view.Subfolders, newFolderView(sub))
	}
	return view
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID with its resolved ancestor chain
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	details, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folderDetailsView{
		FolderDetails:   details,
		UsagePercentage: services.UsagePercentage(&details.Folder),
	})
}

// ListRootFolders lists root folders
// GET /api/folders
func (h *FolderHandler) ListRootFolders(w http.ResponseWriter, r *http.Request) {
	contents, err := h.folderService.ListChildren(r.Context(), nil)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, newFolderContentsView(contents))
}

// ListChildren lists a folder's immediate subfolders and files
// GET /api/folders/{id}/children
func (h *FolderHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	contents, err := h.folderService.ListChildren(r.Context(), &id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, newFolderContentsView(contents))
}

// updateFolderRequest carries the PATCH-able folder fields. Pointer fields
// distinguish absent from zero.
type updateFolderRequest struct {
	Name        *string `json:"name,omitempty"`
	UploadLimit *int    `json:"upload_limit,omitempty"`
}

// UpdateFolder renames a folder and/or adjusts its upload limit
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	var req updateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == nil && req.UploadLimit == nil {
		httputil.RespondError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	var folder *models.Folder
	var err error

	if req.Name != nil {
		folder, err = h.folderService.RenameFolder(r.Context(), id, *req.Name)
		if err != nil {
			handleError(w, err)
			return
		}
	}
	if req.UploadLimit != nil {
		folder, err = h.folderService.SetUploadLimit(r.Context(), id, req.UploadLimit)
		if err != nil {
			handleError(w, err)
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder recursively deletes a folder and everything below it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	if err := h.folderService.DeleteFolderRecursive(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// addAssigneeRequest is the payload for assigning a user to a folder
type addAssigneeRequest struct {
	models.Assignee
	PropagateToChildren bool `json:"propagate_to_children"`
}

// AddAssignee assigns a user to a folder, optionally to its direct children
// POST /api/folders/{id}/assignees
func (h *FolderHandler) AddAssignee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	var req addAssigneeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.folderService.AddAssignee(r.Context(), id, req.Assignee, req.PropagateToChildren); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveAssignee removes an exact-match assignee from a folder
// DELETE /api/folders/{id}/assignees
func (h *FolderHandler) RemoveAssignee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	var assignee models.Assignee
	if err := httputil.ParseJSON(w, r, &assignee); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.folderService.RemoveAssignee(r.Context(), id, assignee); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
