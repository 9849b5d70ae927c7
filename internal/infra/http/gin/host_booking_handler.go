package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	bookingapp "campnest/internal/app/handlers/booking"
	"campnest/internal/app/queries"
	domainuser "campnest/internal/domain/user"
)

// HostBookingHandler serves host-side booking management.
type HostBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HostBookingHandler) List(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	result, err := queries.Ask[bookingapp.HostBookingsQuery, []dto.Booking](c.Request.Context(), h.Queries, bookingapp.HostBookingsQuery{
		HostID: host.ID,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h HostBookingHandler) ListForSite(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	result, err := queries.Ask[bookingapp.SiteBookingsQuery, []dto.Booking](c.Request.Context(), h.Queries, bookingapp.SiteBookingsQuery{
		HostID: host.ID,
		SiteID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

type confirmBookingRequest struct {
	Message string `json:"message"`
}

func (h HostBookingHandler) Confirm(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req confirmBookingRequest
	_ = c.ShouldBindJSON(&req)
	result, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, bookingapp.ConfirmBookingCommand{
		HostID:    host.ID,
		BookingID: c.Param("id"),
		Message:   req.Message,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Cancel(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, bookingapp.CancelBookingCommand{
		ActorID:   host.ID,
		BookingID: c.Param("id"),
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Complete(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	result, err := commands.Dispatch[bookingapp.CompleteBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, bookingapp.CompleteBookingCommand{
		HostID:    host.ID,
		BookingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostBookingHTTP = HostBookingHandler{}
