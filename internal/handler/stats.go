package handler

import (
	"log/slog"
	"net/http"
	"time"

	"docuvault/internal/areas"
	"docuvault/internal/config"
	"docuvault/internal/domain/repositories"
	"docuvault/internal/domain/services"
	"docuvault/internal/handler/sse"
	"docuvault/internal/httputil"
	"docuvault/internal/service"
)

// keepAliveInterval paces SSE comments so idle dashboard streams survive
// proxies with read timeouts.
const keepAliveInterval = 15 * time.Second

// StatsHandler handles dashboard aggregation HTTP requests
type StatsHandler struct {
	statsService services.StatsService
	activityRepo repositories.ActivityRepository
	areaRegistry *areas.Registry
	watcher      *service.Watcher
	logger       *slog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(
	statsService services.StatsService,
	activityRepo repositories.ActivityRepository,
	areaRegistry *areas.Registry,
	watcher *service.Watcher,
	logger *slog.Logger,
) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		activityRepo: activityRepo,
		areaRegistry: areaRegistry,
		watcher:      watcher,
		logger:       logger,
	}
}

// OverallProgress reports forest-wide completion
// GET /api/stats/progress
func (h *StatsHandler) OverallProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.statsService.OverallProgress(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, progress)
}

// EmptySubfolders lists empty subfolders grouped by root folder
// GET /api/stats/empty-subfolders
func (h *StatsHandler) EmptySubfolders(w http.ResponseWriter, r *http.Request) {
	results, err := h.statsService.EmptySubfoldersPerRoot(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}

// CompletedSubfolders lists completed subfolders grouped by root folder
// GET /api/stats/completed-subfolders
func (h *StatsHandler) CompletedSubfolders(w http.ResponseWriter, r *http.Request) {
	results, err := h.statsService.CompletedSubfoldersPerRoot(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}

// RootFileCounts totals subtree files per root folder
// GET /api/stats/root-file-counts
func (h *StatsHandler) RootFileCounts(w http.ResponseWriter, r *http.Request) {
	results, err := h.statsService.FilesPerRootFolder(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}

// SubtreeFileCount sums file counts for one folder and all descendants
// GET /api/folders/{id}/file-count
func (h *StatsHandler) SubtreeFileCount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder ID is required")
		return
	}

	count, err := h.statsService.CountFilesInSubtree(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"total_files": count})
}

// ListAreas returns the configured dashboard areas
// GET /api/areas
func (h *StatsHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.areaRegistry.List())
}

// AreaTree resolves an area's root folders with files and one subfolder level
// GET /api/areas/{name}
func (h *StatsHandler) AreaTree(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, ok := h.areaRegistry.Get(name); !ok {
		httputil.RespondError(w, http.StatusNotFound, "unknown area")
		return
	}

	tree, err := h.statsService.AreaTree(r.Context(), name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// UserFolders returns the assignee-filtered forest view for the
// authenticated user. Optional ?parent_id narrows to one folder's children.
// GET /api/me/folders
func (h *StatsHandler) UserFolders(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var parentID *string
	if p := r.URL.Query().Get("parent_id"); p != "" {
		parentID = &p
	}

	forest, err := h.statsService.FoldersForUser(r.Context(), userID, parentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, forest)
}

// RecentActivity lists the newest audit-log entries
// GET /api/activity
func (h *StatsHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.activityRepo.ListRecent(r.Context(), config.RecentActivityLimit)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, entries)
}

// StreamDashboard streams dashboard snapshots via Server-Sent Events.
// The latest snapshot is sent on connect, then one event per recomputation.
// GET /api/stats/stream
func (h *StatsHandler) StreamDashboard(w http.ResponseWriter, r *http.Request) {
	writer, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	subID, snapshots := h.watcher.Subscribe()
	defer h.watcher.Unsubscribe(subID)

	h.logger.Info("dashboard stream opened", "subscriber_id", subID)
	defer h.logger.Info("dashboard stream closed", "subscriber_id", subID)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			if err := writer.WriteEvent("snapshot", snapshot); err != nil {
				h.logger.Debug("dashboard stream write failed", "subscriber_id", subID, "error", err)
				return
			}
		case <-keepAlive.C:
			if err := writer.WriteKeepAlive(); err != nil {
				return
			}
		}
	}
}
