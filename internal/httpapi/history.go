package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-grocer/internal/app"
)

type labelRequest struct {
	Label string `json:"label"`
}

func (h *handler) listHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"snapshots": h.app.History()})
}

func (h *handler) archive(c *gin.Context) {
	var req labelRequest
	// The body is optional: an empty post archives with the default label.
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	s, err := h.app.Archive(c.Request.Context(), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *handler) getSnapshot(c *gin.Context) {
	s, err := h.app.Snapshot(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) renameSnapshot(c *gin.Context) {
	var req labelRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.app.RenameSnapshot(c.Request.Context(), c.Param("id"), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) restoreSnapshot(c *gin.Context) {
	h.requestConfirmation(c, app.ActionRestoreSnapshot, c.Param("id"))
}

func (h *handler) deleteSnapshot(c *gin.Context) {
	h.requestConfirmation(c, app.ActionDeleteSnapshot, c.Param("id"))
}

func (h *handler) exportSnapshot(c *gin.Context) {
	var buf bytes.Buffer
	name, err := h.app.ExportSnapshotCSV(&buf, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendCSV(c, name, buf.Bytes())
}

func sendCSV(c *gin.Context, name string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
