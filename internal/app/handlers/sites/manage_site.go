package sites

import (
	"context"
	"log/slog"
	"time"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/outbox"
	"campnest/internal/app/uow"
	domainsites "campnest/internal/domain/sites"
)

const (
	activateSiteKey   = "sites.activate"
	suspendSiteKey    = "sites.suspend"
	updateTariffKey   = "sites.update_tariff"
	updateCapacityKey = "sites.update_capacity"
)

type ActivateSiteCommand struct {
	HostID string
	SiteID string
}

func (c ActivateSiteCommand) Key() string { return activateSiteKey }

type SuspendSiteCommand struct {
	HostID string
	SiteID string
	Reason string
}

func (c SuspendSiteCommand) Key() string { return suspendSiteKey }

// UpdateTariffCommand replaces a site's price card. Existing bookings keep
// their stored snapshot; only future pricing runs see the change.
type UpdateTariffCommand struct {
	HostID string
	SiteID string
	Tariff dto.Tariff
}

func (c UpdateTariffCommand) Key() string { return updateTariffKey }

type UpdateCapacityCommand struct {
	HostID   string
	SiteID   string
	Capacity dto.Capacity
}

func (c UpdateCapacityCommand) Key() string { return updateCapacityKey }

// ManageSiteHandler owns the host-facing site mutations: a shared
// load-authorize-mutate-save path with one mutation callback per command.
type ManageSiteHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *ManageSiteHandler) HandleActivate(ctx context.Context, cmd ActivateSiteCommand) (*dto.Site, error) {
	return h.mutate(ctx, cmd.HostID, cmd.SiteID, func(s *domainsites.Site, now time.Time) error {
		return s.Activate(now)
	})
}

func (h *ManageSiteHandler) HandleSuspend(ctx context.Context, cmd SuspendSiteCommand) (*dto.Site, error) {
	return h.mutate(ctx, cmd.HostID, cmd.SiteID, func(s *domainsites.Site, now time.Time) error {
		return s.Suspend(cmd.Reason, now)
	})
}

func (h *ManageSiteHandler) HandleUpdateTariff(ctx context.Context, cmd UpdateTariffCommand) (*dto.Site, error) {
	return h.mutate(ctx, cmd.HostID, cmd.SiteID, func(s *domainsites.Site, now time.Time) error {
		return s.UpdateTariff(domainsites.Tariff{
			Currency:      cmd.Tariff.Currency,
			BasePrice:     cmd.Tariff.BasePrice,
			WeekendPrice:  cmd.Tariff.WeekendPrice,
			CleaningFee:   cmd.Tariff.CleaningFee,
			PetFee:        cmd.Tariff.PetFee,
			ExtraGuestFee: cmd.Tariff.ExtraGuestFee,
		}, now)
	})
}

func (h *ManageSiteHandler) HandleUpdateCapacity(ctx context.Context, cmd UpdateCapacityCommand) (*dto.Site, error) {
	return h.mutate(ctx, cmd.HostID, cmd.SiteID, func(s *domainsites.Site, now time.Time) error {
		return s.UpdateCapacity(domainsites.Capacity{
			MaxGuests:   cmd.Capacity.MaxGuests,
			MaxPets:     cmd.Capacity.MaxPets,
			MaxVehicles: cmd.Capacity.MaxVehicles,
		}, now)
	})
}

func (h *ManageSiteHandler) mutate(ctx context.Context, hostID, siteID string, apply func(*domainsites.Site, time.Time) error) (*dto.Site, error) {
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	site, err := unit.Sites().ByID(execCtx, domainsites.SiteID(siteID))
	if err != nil {
		return nil, err
	}
	if site.Host != domainsites.HostID(hostID) {
		return nil, ErrNotPropertyHost
	}
	if err := apply(site, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Sites().Save(execCtx, site); err != nil {
		return nil, err
	}
	if err := outbox.Drain(execCtx, h.Outbox, nil, &site.EventRecorder); err != nil {
		return nil, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}
	view := dto.MapSite(site)
	return &view, nil
}

type ActivateSiteHandler struct{ *ManageSiteHandler }

func (h ActivateSiteHandler) Handle(ctx context.Context, cmd ActivateSiteCommand) (*dto.Site, error) {
	return h.HandleActivate(ctx, cmd)
}

type SuspendSiteHandler struct{ *ManageSiteHandler }

func (h SuspendSiteHandler) Handle(ctx context.Context, cmd SuspendSiteCommand) (*dto.Site, error) {
	return h.HandleSuspend(ctx, cmd)
}

type UpdateTariffHandler struct{ *ManageSiteHandler }

func (h UpdateTariffHandler) Handle(ctx context.Context, cmd UpdateTariffCommand) (*dto.Site, error) {
	return h.HandleUpdateTariff(ctx, cmd)
}

type UpdateCapacityHandler struct{ *ManageSiteHandler }

func (h UpdateCapacityHandler) Handle(ctx context.Context, cmd UpdateCapacityCommand) (*dto.Site, error) {
	return h.HandleUpdateCapacity(ctx, cmd)
}

var (
	_ commands.Handler[ActivateSiteCommand, *dto.Site]   = ActivateSiteHandler{}
	_ commands.Handler[SuspendSiteCommand, *dto.Site]    = SuspendSiteHandler{}
	_ commands.Handler[UpdateTariffCommand, *dto.Site]   = UpdateTariffHandler{}
	_ commands.Handler[UpdateCapacityCommand, *dto.Site] = UpdateCapacityHandler{}
)
