package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"patchdeck/clients"
	"patchdeck/coordinator"
	"patchdeck/telemetry"
	"patchdeck/types"
)

// DomainView bundles one change domain's coordinator with the fleet
// service its catalog is read from
type DomainView struct {
	Segment string
	Coord   *coordinator.Coordinator
	Service types.FleetService
}

// Console wires the two domain views, the summary caches and the history
// store behind the REST surface the operator UI consumes
type Console struct {
	serviceName string
	views       []*DomainView
	summaries   map[string]*clients.SummaryCache
	notifier    coordinator.RefreshNotifier
	history     *SubmissionStore
	historyCap  int
}

// CatalogRow is one catalog item annotated with this session's selection
// and execution state
type CatalogRow struct {
	types.WorkItem
	Key      types.ItemKey            `json:"key"`
	Selected bool                     `json:"selected"`
	Status   *coordinator.StatusEntry `json:"status,omitempty"`
}

// StatusRow is one ledger entry keyed for transport
type StatusRow struct {
	Key types.ItemKey `json:"key"`
	coordinator.StatusEntry
}

// RegisterRoutes attaches all console routes to the router
func (con *Console) RegisterRoutes(router *gin.Engine) {
	router.GET("/summary", con.summaryHandler)
	router.POST("/refresh", con.refreshHandler)
	router.GET("/history", con.historyHandler)

	for _, view := range con.views {
		group := router.Group("/" + view.Segment)
		group.GET("", con.listHandler(view))
		group.GET("/status", con.statusHandler(view))
		group.GET("/selection", con.selectionHandler(view))
		group.POST("/selection/toggle", con.toggleHandler(view))
		group.POST("/selection/all", con.selectAllHandler(view))
		group.DELETE("/selection", con.clearHandler(view))
		group.POST("/execute", con.executeHandler(view))
	}
}

// summaryHandler serves the cached per-domain summaries for the dashboard
// badges
func (con *Console) summaryHandler(c *gin.Context) {
	out := make(map[string]types.Summary, len(con.summaries))
	for segment, cache := range con.summaries {
		summary, err := cache.Summary(c.Request.Context())
		if telemetry.LogAndError(c, err, con.serviceName, "Failed to fetch "+segment+" summary") {
			return
		}
		out[segment] = summary
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"summaries": out,
	})
}

// refreshHandler lets the UI force-invalidate shared summary data
func (con *Console) refreshHandler(c *gin.Context) {
	con.notifier.Trigger()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// historyHandler returns recent submission audit rows
func (con *Console) historyHandler(c *gin.Context) {
	if con.history == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "records": []SubmissionRecord{}})
		return
	}

	limit := con.historyCap
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed < limit {
			limit = parsed
		}
	}

	records, err := con.history.Recent(limit)
	if telemetry.LogAndError(c, err, con.serviceName, "Failed to read submission history") {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"records": records,
	})
}

// listHandler proxies one catalog page from the fleet API, refreshes the
// coordinator's catalog snapshot, and annotates each row with selection
// and execution state
func (con *Console) listHandler(view *DomainView) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter types.ListFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid list filters",
				"error":   err.Error(),
			})
			return
		}

		resp, err := view.Service.List(c.Request.Context(), filter)
		if telemetry.LogAndError(c, err, con.serviceName, "Failed to list "+view.Segment) {
			return
		}

		view.Coord.SetCatalog(resp.Items)

		rows := make([]CatalogRow, 0, len(resp.Items))
		for _, item := range resp.Items {
			key := types.KeyOf(item)
			row := CatalogRow{
				WorkItem: item,
				Key:      key,
				Selected: view.Coord.IsSelected(key),
			}
			if entry, ok := view.Coord.StatusFor(key); ok {
				row.Status = &entry
			}
			rows = append(rows, row)
		}

		updateDepthGauges(view.Segment, view.Coord)
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"total":  resp.Total,
			"page":   resp.Page,
			"items":  rows,
		})
	}
}

// statusHandler returns all ledger entries for the domain
func (con *Console) statusHandler(view *DomainView) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := view.Coord.Statuses()
		rows := make([]StatusRow, 0, len(statuses))
		for key, entry := range statuses {
			rows = append(rows, StatusRow{Key: key, StatusEntry: entry})
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"pending": view.Coord.PendingCount(),
			"entries": rows,
		})
	}
}

// selectionHandler returns the current selection keys
func (con *Console) selectionHandler(view *DomainView) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"keys":   view.Coord.SelectedKeys(),
		})
	}
}

// toggleHandler flips selection membership for one key
func (con *Console) toggleHandler(view *DomainView) gin.HandlerFunc {
	return func(c *gin.Context) {
		var key types.ItemKey
		if err := c.ShouldBindJSON(&key); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid item key",
				"error":   err.Error(),
			})
			return
		}

		view.Coord.Toggle(key)
		updateDepthGauges(view.Segment, view.Coord)
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"selected": view.Coord.IsSelected(key),
			"count":    view.Coord.SelectedCount(),
		})
	}
}

// selectAllHandler selects every item in the current catalog snapshot
func (con *Console) selectAllHandler(view *DomainView) gin.HandlerFunc {
	return func(c *gin.Context) {
		view.Coord.SelectAll()
		updateDepthGauges(view.Segment, view.Coord)
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"count":  view.Coord.SelectedCount(),
		})
	}
}

// clearHandler empties the selection
func (con *Console) clearHandler(view *DomainView) gin.HandlerFunc {
	return func(c *gin.Context) {
		view.Coord.ClearSelection()
		updateDepthGauges(view.Segment, view.Coord)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// executeHandler submits the current selection. The submission runs on a
// background context: an operator navigating away must not cancel work
// already handed to remote agents.
func (con *Console) executeHandler(view *DomainView) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := view.Coord.ExecuteSelected(context.Background())
		updateDepthGauges(view.Segment, view.Coord)
		c.JSON(http.StatusAccepted, gin.H{
			"status": "accepted",
			"report": report,
		})
	}
}
