package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"smart-grocer/internal/analytics"
	"smart-grocer/internal/app"
	"smart-grocer/internal/export"
	"smart-grocer/internal/metrics"
	"smart-grocer/internal/profile"
)

const dateLayout = "2006-01-02"

// parseRange reads the optional from/to query parameters as local dates.
func parseRange(c *gin.Context) (analytics.DateRange, error) {
	var r analytics.DateRange
	for param, dst := range map[string]*time.Time{"from": &r.From, "to": &r.To} {
		raw := strings.TrimSpace(c.Query(param))
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return analytics.DateRange{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", errBadRequest, param)
		}
		*dst = t
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return analytics.DateRange{}, fmt.Errorf("%w: to is before from", errBadRequest)
	}
	return r, nil
}

func (h *handler) dashboard(c *gin.Context) {
	r, err := parseRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	key, dir, err := analytics.ParseSort(c.Query("sort"), c.Query("dir"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	c.JSON(http.StatusOK, h.app.Dashboard(app.DashboardQuery{
		Range:           r,
		Category:        c.Query("category"),
		SortKey:         key,
		SortDir:         dir,
		IncludeArchived: c.Query("archived") == "true",
	}))
}

type compareRequest struct {
	Products []analytics.Product `json:"products"`
}

func (h *handler) priceCompare(c *gin.Context) {
	var req compareRequest
	if !bindJSON(c, &req) {
		return
	}
	results, err := analytics.CompareUnitPrices(req.Products)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *handler) exportCSV(c *gin.Context) {
	r, err := parseRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.app.ExportCSV(&buf, r); err != nil {
		respondError(c, err)
		return
	}
	sendCSV(c, export.FileName(""), buf.Bytes())
}

func (h *handler) share(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"text": h.app.ShareText()})
}

func (h *handler) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Profile())
}

func (h *handler) updateProfile(c *gin.Context) {
	var p profile.Profile
	if !bindJSON(c, &p) {
		return
	}
	saved, err := h.app.UpdateProfile(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handler) completeSetup(c *gin.Context) {
	var p profile.Profile
	if !bindJSON(c, &p) {
		return
	}
	saved, err := h.app.CompleteSetup(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

type budgetBody struct {
	Goal float64 `json:"goal"`
}

func (h *handler) getBudget(c *gin.Context) {
	c.JSON(http.StatusOK, budgetBody{Goal: h.app.Budget()})
}

func (h *handler) setBudget(c *gin.Context) {
	var req budgetBody
	if !bindJSON(c, &req) {
		return
	}
	goal, err := h.app.SetBudget(c.Request.Context(), req.Goal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgetBody{Goal: goal})
}

func (h *handler) listNotices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notices": h.app.Notices()})
}

func (h *handler) dismissNotice(c *gin.Context) {
	if !h.app.DismissNotice(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notice not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"storage": "ok",
		"system":  metrics.GetSysHealth(h.dataPath),
	}
	if err := h.app.PersistenceIssue(); err != nil {
		body["storage"] = "degraded"
		body["storageError"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}
