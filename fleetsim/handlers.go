package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"patchdeck/types"
)

// registerDomainRoutes attaches the fleet API surface for one domain
func registerDomainRoutes(router *gin.Engine, state *FleetState, domain string) {
	group := router.Group("/" + domain)
	group.GET("", listHandler(state, domain))
	group.GET("/results", resultsHandler(state, domain))
	group.POST("/execute", executeHandler(state, domain))
}

// listHandler serves the current catalog page for the domain
func listHandler(state *FleetState, domain string) gin.HandlerFunc {
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

		items := state.Catalog(domain, filter)
		c.JSON(http.StatusOK, types.ListResponse{
			Status: "ok",
			Total:  len(items),
			Page:   filter.Page,
			Items:  items,
		})
	}
}

// resultsHandler serves the overloaded results endpoint: summary counters
// plus per-host outcomes in one payload. Due jobs are aged first so
// resolution is visible to the next poll after the delay elapses.
func resultsHandler(state *FleetState, domain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state.Age(time.Now())
		summary, results := state.Snapshot(domain)
		updateDepthGauges(state)
		c.JSON(http.StatusOK, types.ResultsResponse{
			Status:  "ok",
			Summary: summary,
			Results: results,
		})
	}
}

// executeHandler accepts one host batch for asynchronous execution; only
// call-level acceptance is reported
func executeHandler(state *FleetState, domain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ExecuteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid execute request",
				"error":   err.Error(),
			})
			return
		}

		if len(req.HostIDs) == 0 || len(req.Packages) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "hostIds and packages are required",
			})
			return
		}

		accepted := state.Accept(domain, req, time.Now())
		updateDepthGauges(state)
		c.JSON(http.StatusAccepted, types.ExecuteResponse{
			Status:   "accepted",
			Accepted: accepted,
		})
	}
}
