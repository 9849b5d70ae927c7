package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	sitesapp "campnest/internal/app/handlers/sites"
	"campnest/internal/app/queries"
	domainuser "campnest/internal/domain/user"
)

// SiteHandler serves the property/site catalog plus host management.
type SiteHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createPropertyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Region      string `json:"region"`
	Country     string `json:"country"`
}

func (h SiteHandler) CreateProperty(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[sitesapp.CreatePropertyCommand, *dto.Property](c.Request.Context(), h.Commands, sitesapp.CreatePropertyCommand{
		HostID:      host.ID,
		Name:        req.Name,
		Description: req.Description,
		Region:      req.Region,
		Country:     req.Country,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h SiteHandler) GetProperty(c *gin.Context) {
	result, err := queries.Ask[sitesapp.GetPropertyQuery, *dto.Property](c.Request.Context(), h.Queries, sitesapp.GetPropertyQuery{
		PropertyID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SiteHandler) ListMyProperties(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	result, err := queries.Ask[sitesapp.HostPropertiesQuery, []dto.Property](c.Request.Context(), h.Queries, sitesapp.HostPropertiesQuery{
		HostID: host.ID,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

type createSiteRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Capacity    dto.Capacity `json:"capacity"`
	Tariff      dto.Tariff   `json:"tariff"`
	MinNights   int          `json:"min_nights"`
	MaxNights   int          `json:"max_nights"`
	InstantBook bool         `json:"instant_book"`
}

func (h SiteHandler) CreateSite(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req createSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[sitesapp.CreateSiteCommand, *dto.Site](c.Request.Context(), h.Commands, sitesapp.CreateSiteCommand{
		HostID:      host.ID,
		PropertyID:  c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Tariff:      req.Tariff,
		MinNights:   req.MinNights,
		MaxNights:   req.MaxNights,
		InstantBook: req.InstantBook,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h SiteHandler) GetSite(c *gin.Context) {
	result, err := queries.Ask[sitesapp.GetSiteQuery, *dto.Site](c.Request.Context(), h.Queries, sitesapp.GetSiteQuery{
		SiteID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SiteHandler) ListSites(c *gin.Context) {
	result, err := queries.Ask[sitesapp.PropertySitesQuery, *dto.SiteCollection](c.Request.Context(), h.Queries, sitesapp.PropertySitesQuery{
		PropertyID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SiteHandler) Activate(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	result, err := commands.Dispatch[sitesapp.ActivateSiteCommand, *dto.Site](c.Request.Context(), h.Commands, sitesapp.ActivateSiteCommand{
		HostID: host.ID,
		SiteID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type suspendSiteRequest struct {
	Reason string `json:"reason"`
}

func (h SiteHandler) Suspend(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req suspendSiteRequest
	_ = c.ShouldBindJSON(&req)
	result, err := commands.Dispatch[sitesapp.SuspendSiteCommand, *dto.Site](c.Request.Context(), h.Commands, sitesapp.SuspendSiteCommand{
		HostID: host.ID,
		SiteID: c.Param("id"),
		Reason: req.Reason,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SiteHandler) UpdateTariff(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req dto.Tariff
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[sitesapp.UpdateTariffCommand, *dto.Site](c.Request.Context(), h.Commands, sitesapp.UpdateTariffCommand{
		HostID: host.ID,
		SiteID: c.Param("id"),
		Tariff: req,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SiteHandler) UpdateCapacity(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req dto.Capacity
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[sitesapp.UpdateCapacityCommand, *dto.Site](c.Request.Context(), h.Commands, sitesapp.UpdateCapacityCommand{
		HostID:   host.ID,
		SiteID:   c.Param("id"),
		Capacity: req,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ SiteHTTP = SiteHandler{}
