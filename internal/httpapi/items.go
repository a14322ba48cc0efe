package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-grocer/internal/app"
	"smart-grocer/internal/shopping"
)

func (h *handler) listItems(c *gin.Context) {
	body := gin.H{
		"items":   h.app.Items(),
		"summary": h.app.Summary(),
		"groups":  h.app.Grouped(),
	}
	if err := h.app.PersistenceIssue(); err != nil {
		body["storageError"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (h *handler) addItem(c *gin.Context) {
	var d shopping.Draft
	if !bindJSON(c, &d) {
		return
	}
	item, err := h.app.AddItem(c.Request.Context(), d)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handler) updateItem(c *gin.Context) {
	var p shopping.Patch
	if !bindJSON(c, &p) {
		return
	}
	item, err := h.app.UpdateItem(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) toggleItem(c *gin.Context) {
	item, err := h.app.ToggleItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) removeItem(c *gin.Context) {
	if err := h.app.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type clearRequest struct {
	Scope string `json:"scope"`
}

// clearItems never clears anything: it answers with a confirmation that
// must be posted back to /api/confirmations/:id.
func (h *handler) clearItems(c *gin.Context) {
	var req clearRequest
	if !bindJSON(c, &req) {
		return
	}
	var action app.Action
	switch req.Scope {
	case "completed":
		action = app.ActionClearCompleted
	case "all":
		action = app.ActionClearAll
	default:
		respondError(c, fmt.Errorf("%w: scope must be completed or all", errBadRequest))
		return
	}
	h.requestConfirmation(c, action, "")
}

func (h *handler) requestConfirmation(c *gin.Context, action app.Action, target string) {
	conf, err := h.app.RequestConfirmation(action, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, conf)
}

func (h *handler) confirm(c *gin.Context) {
	out, err := h.app.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) cancelConfirmation(c *gin.Context) {
	if err := h.app.CancelConfirmation(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type suggestRequest struct {
	Input string `json:"input"`
}

func (h *handler) suggestRecipe(c *gin.Context) {
	h.suggest(c, h.app.GenerateFromRecipe)
}

func (h *handler) suggestText(c *gin.Context) {
	h.suggest(c, h.app.GenerateFromText)
}

func (h *handler) suggestURL(c *gin.Context) {
	h.suggest(c, h.app.GenerateFromURL)
}

func (h *handler) suggest(c *gin.Context, generate func(ctx context.Context, input string) (app.MergeResult, error)) {
	var req suggestRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := generate(c.Request.Context(), req.Input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
