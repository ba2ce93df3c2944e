package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/andresuchdata/b2b-portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxUploadBytes bounds one product upload.
const maxUploadBytes = 10 << 20

type ImportHandler struct {
	workspace *service.Workspace
}

func NewImportHandler(w *service.Workspace) *ImportHandler {
	return &ImportHandler{workspace: w}
}

// Upload starts a background import from the multipart "file" field.
func (h *ImportHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "could not read upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		badRequest(c, "could not read upload")
		return
	}

	status, err := h.workspace.StartImport(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Str("job_id", status.ID).Str("filename", fh.Filename).Int("rows", status.TotalRows).Msg("import started")
	c.JSON(http.StatusAccepted, status)
}

func (h *ImportHandler) Status(c *gin.Context) {
	status, err := h.workspace.ImportStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *ImportHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.workspace.RecentImports(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": runs})
}

func (h *ImportHandler) Cancel(c *gin.Context) {
	h.workspace.CancelImport()
	c.Status(http.StatusNoContent)
}
