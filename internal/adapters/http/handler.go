package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
	"github.com/jhnwsk/spotify2tidal/internal/ports"
)

// Handler holds the HTTP handlers for the migration API.
type Handler struct {
	service ports.MigrationService
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler with the given migration service.
func NewHandler(service ports.MigrationService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up all API routes on the given Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		api.GET("/playlists", h.ListPlaylists)
		api.POST("/migrate", h.Migrate)
		api.POST("/import", h.Import)
	}
}

// Health returns a simple health check response.
//
//	@Summary		Health check
//	@Description	Returns the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ListPlaylists returns the playlists owned by the authorized Spotify user.
//
//	@Summary		List owned playlists
//	@Description	Returns every Spotify playlist owned by the configured user, with its tracks.
//	@Tags			playlists
//	@Produce		json
//	@Success		200	{array}		domain.SourcePlaylist
//	@Failure		401	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/v1/playlists [get]
func (h *Handler) ListPlaylists(c *gin.Context) {
	playlists, err := h.service.ListPlaylists(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	if playlists == nil {
		playlists = []domain.SourcePlaylist{}
	}
	c.JSON(http.StatusOK, playlists)
}

// Migrate migrates owned playlists to TIDAL.
//
//	@Summary		Migrate playlists
//	@Description	Migrates the named playlists, or every owned playlist when none are named.
//	@Description	Tracks are matched by ISRC, then exact name and artist, then fuzzy similarity.
//	@Description	In dry-run mode nothing is written to TIDAL.
//	@Tags			migration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		domain.MigrateRequest	true	"Playlists to migrate and dry-run flag"
//	@Success		200		{array}		domain.MigrationResult
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/v1/migrate [post]
func (h *Handler) Migrate(c *gin.Context) {
	var req domain.MigrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	var (
		results []domain.MigrationResult
		err     error
	)
	if len(req.Playlists) == 0 {
		results, err = h.service.MigrateAll(c.Request.Context(), req.DryRun)
	} else {
		results, err = h.service.MigrateSelected(c.Request.Context(), req.Playlists, req.DryRun)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	if results == nil {
		results = []domain.MigrationResult{}
	}
	c.JSON(http.StatusOK, results)
}

// Import migrates a public playlist referenced by URL.
//
//	@Summary		Import playlist by URL
//	@Description	Fetches a public Spotify playlist with application credentials and migrates it to TIDAL.
//	@Description	An optional name overrides the playlist name.
//	@Tags			migration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		domain.ImportRequest	true	"Playlist URL, optional name and dry-run flag"
//	@Success		200		{object}	domain.MigrationResult
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/v1/import [post]
func (h *Handler) Import(c *gin.Context) {
	var req domain.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	result, err := h.service.ImportPlaylist(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps domain errors onto status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		status, code = http.StatusInternalServerError, "configuration_error"
	case errors.Is(err, domain.ErrAuthentication):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrInvalidPlaylistURL):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	}

	h.logger.Warn("request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err),
	)
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}
