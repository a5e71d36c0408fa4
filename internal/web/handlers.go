package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/user/assetview/internal/fetcher"
	"github.com/user/assetview/internal/model"
	"github.com/user/assetview/internal/storage"
)

// AssetStore is the storage the handlers read from.
type AssetStore interface {
	ListAssets(ctx context.Context, opts storage.ListOptions) ([]model.Asset, int, error)
	GetAsset(ctx context.Context, id int) (*model.Asset, error)
}

// Handlers contains HTTP handlers.
type Handlers struct {
	store  AssetStore
	limit  int
	logger zerolog.Logger
}

// NewHandlers creates new handlers. limit is the page size used when a
// request does not specify one.
func NewHandlers(store AssetStore, limit int, logger zerolog.Logger) *Handlers {
	if limit <= 0 {
		limit = storage.DefaultLimit
	}
	return &Handlers{
		store:  store,
		limit:  limit,
		logger: logger,
	}
}

// RegisterRoutes attaches the asset routes to r.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/assets", h.ListAssets)
	r.GET("/health", h.Health)
}

// ListAssets serves one page of assets, optionally filtered by host
// substring, or a single asset when id is given. The number of matching
// assets is reported in the X-Total-Count header.
func (h *Handlers) ListAssets(c *gin.Context) {
	page, ok := intParam(c, "page", 1)
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid page")
		return
	}
	limit, ok := intParam(c, "limit", h.limit)
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid limit")
		return
	}

	if idStr := c.Query("id"); idStr != "" {
		h.getAsset(c, idStr)
		return
	}

	opts := storage.ListOptions{Page: page, Limit: limit, Host: c.Query("host")}
	assets, total, err := h.store.ListAssets(c.Request.Context(), opts)
	if err != nil {
		h.logger.Error().Err(err).Int("page", page).Str("host", opts.Host).Msg("failed to list assets")
		writeError(c, http.StatusInternalServerError, "error querying assets")
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}

	c.Header(fetcher.TotalCountHeader, strconv.Itoa(total))
	c.JSON(http.StatusOK, assets)
}

func (h *Handlers) getAsset(c *gin.Context, idStr string) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid asset ID")
		return
	}

	asset, err := h.store.GetAsset(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Int("id", id).Msg("failed to get asset")
		writeError(c, http.StatusInternalServerError, "error querying asset")
		return
	}

	assets := []model.Asset{}
	if asset != nil {
		assets = append(assets, *asset)
	}
	c.Header(fetcher.TotalCountHeader, strconv.Itoa(len(assets)))
	c.JSON(http.StatusOK, assets)
}

// Health reports that the server is up.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// intParam reads an integer query parameter, falling back to def when it is
// absent. ok is false if the value does not parse.
func intParam(c *gin.Context, name string, def int) (int, bool) {
	s := c.Query(name)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
