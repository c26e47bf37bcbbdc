package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// NewRouter builds the gin engine with every route registered
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.Log), RequestMetrics(h.Metrics))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Club Team Balancer API",
			"version": Version,
		})
	})
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	r.GET("/members", h.ListMembers)
	r.POST("/members", h.CreateMember)

	r.POST("/teams", h.BalanceTeams)
	r.POST("/teams/validate", h.ValidateBalanceInput)

	r.GET("/events", h.ListEvents)
	r.POST("/events", h.CreateEvent)

	events := r.Group("/events/:id")
	{
		events.GET("", h.GetEvent)
		events.POST("/attendance", h.SetAttendance)
		events.GET("/attendees", h.ListAttendees)
		events.GET("/summary", h.GetEventSummary)

		events.POST("/teams", h.BalanceEventTeams)
		events.POST("/teams/save", h.SaveEventTeams)
		events.GET("/teams/saved", h.ListTeamSets)
		events.GET("/teams/saved/:set_id", h.GetTeamSet)
		events.GET("/teams/balance", h.GetTeamBalance)
	}

	return r
}
