package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	availabilityapp "campnest/internal/app/handlers/availability"
	"campnest/internal/app/queries"
	domainuser "campnest/internal/domain/user"
)

// AvailabilityHandler serves the calendar read side plus host block editing.
type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	result, err := queries.Ask[availabilityapp.SiteCalendarQuery, *dto.Calendar](c.Request.Context(), h.Queries, availabilityapp.SiteCalendarQuery{
		SiteID: c.Param("id"),
		From:   from,
		To:     to,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) UnavailableSites(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	result, err := queries.Ask[availabilityapp.UnavailableSitesQuery, *dto.UnavailableSites](c.Request.Context(), h.Queries, availabilityapp.UnavailableSitesQuery{
		From: from,
		To:   to,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type blockDatesRequest struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Reason string    `json:"reason"`
}

func (h AvailabilityHandler) Block(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, err := commands.Dispatch[availabilityapp.BlockDatesCommand, struct{}](c.Request.Context(), h.Commands, availabilityapp.BlockDatesCommand{
		HostID: host.ID,
		SiteID: c.Param("id"),
		From:   req.From,
		To:     req.To,
		Reason: req.Reason,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AvailabilityHandler) Unblock(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, err := commands.Dispatch[availabilityapp.UnblockDatesCommand, struct{}](c.Request.Context(), h.Commands, availabilityapp.UnblockDatesCommand{
		HostID: host.ID,
		SiteID: c.Param("id"),
		From:   req.From,
		To:     req.To,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	const layout = "2006-01-02"
	fromRaw := c.Query("from")
	toRaw := c.Query("to")
	if fromRaw == "" || toRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query params are required"})
		return time.Time{}, time.Time{}, false
	}
	from, err := time.Parse(layout, fromRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(layout, toRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

var _ AvailabilityHTTP = AvailabilityHandler{}
