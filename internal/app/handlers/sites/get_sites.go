package sites

import (
	"context"

	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/queries"
	"campnest/internal/app/uow"
	domainsites "campnest/internal/domain/sites"
)

const (
	getSiteKey        = "sites.get"
	getPropertyKey    = "sites.get_property"
	propertySitesKey  = "sites.list_by_property"
	hostPropertiesKey = "sites.properties_by_host"
)

type GetSiteQuery struct {
	SiteID string
}

func (q GetSiteQuery) Key() string { return getSiteKey }

type GetSiteHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetSiteHandler) Handle(ctx context.Context, query GetSiteQuery) (*dto.Site, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	site, err := unit.Sites().ByID(execCtx, domainsites.SiteID(query.SiteID))
	if err != nil {
		return nil, err
	}
	view := dto.MapSite(site)
	return &view, nil
}

var _ queries.Handler[GetSiteQuery, *dto.Site] = (*GetSiteHandler)(nil)

type GetPropertyQuery struct {
	PropertyID string
}

func (q GetPropertyQuery) Key() string { return getPropertyKey }

type GetPropertyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPropertyHandler) Handle(ctx context.Context, query GetPropertyQuery) (*dto.Property, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	property, err := unit.Properties().ByID(execCtx, domainsites.PropertyID(query.PropertyID))
	if err != nil {
		return nil, err
	}
	view := dto.MapProperty(property)
	return &view, nil
}

var _ queries.Handler[GetPropertyQuery, *dto.Property] = (*GetPropertyHandler)(nil)

type PropertySitesQuery struct {
	PropertyID string
}

func (q PropertySitesQuery) Key() string { return propertySitesKey }

type PropertySitesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *PropertySitesHandler) Handle(ctx context.Context, query PropertySitesQuery) (*dto.SiteCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Sites().ListByProperty(execCtx, domainsites.PropertyID(query.PropertyID))
	if err != nil {
		return nil, err
	}
	items := make([]dto.Site, 0, len(list))
	for _, s := range list {
		items = append(items, dto.MapSite(s))
	}
	return &dto.SiteCollection{Items: items}, nil
}

var _ queries.Handler[PropertySitesQuery, *dto.SiteCollection] = (*PropertySitesHandler)(nil)

type HostPropertiesQuery struct {
	HostID string
}

func (q HostPropertiesQuery) Key() string { return hostPropertiesKey }

type HostPropertiesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *HostPropertiesHandler) Handle(ctx context.Context, query HostPropertiesQuery) ([]dto.Property, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Properties().ListByHost(execCtx, domainsites.HostID(query.HostID))
	if err != nil {
		return nil, err
	}
	out := make([]dto.Property, 0, len(list))
	for _, p := range list {
		out = append(out, dto.MapProperty(p))
	}
	return out, nil
}

var _ queries.Handler[HostPropertiesQuery, []dto.Property] = (*HostPropertiesHandler)(nil)
