package sites

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/outbox"
	"campnest/internal/app/uow"
	"campnest/internal/domain/shared/fault"
	domainsites "campnest/internal/domain/sites"
)

const createSiteKey = "sites.create_site"

// ErrNotPropertyHost is returned when a host tries to add a site under a
// property they do not own.
var ErrNotPropertyHost = fault.Forbidden("property_not_host", "only the property host can manage its sites")

type CreateSiteCommand struct {
	HostID      string
	PropertyID  string
	Name        string
	Description string
	Capacity    dto.Capacity
	Tariff      dto.Tariff
	MinNights   int
	MaxNights   int
	InstantBook bool
}

func (c CreateSiteCommand) Key() string { return createSiteKey }

type CreateSiteHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *CreateSiteHandler) Handle(ctx context.Context, cmd CreateSiteCommand) (*dto.Site, error) {
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	property, err := unit.Properties().ByID(execCtx, domainsites.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	if property.Host != domainsites.HostID(cmd.HostID) {
		return nil, ErrNotPropertyHost
	}

	site, err := domainsites.NewSite(domainsites.CreateSiteParams{
		ID:          domainsites.SiteID(uuid.NewString()),
		PropertyID:  property.ID,
		Host:        property.Host,
		Name:        cmd.Name,
		Description: cmd.Description,
		Capacity: domainsites.Capacity{
			MaxGuests:   cmd.Capacity.MaxGuests,
			MaxPets:     cmd.Capacity.MaxPets,
			MaxVehicles: cmd.Capacity.MaxVehicles,
		},
		Tariff: domainsites.Tariff{
			Currency:      cmd.Tariff.Currency,
			BasePrice:     cmd.Tariff.BasePrice,
			WeekendPrice:  cmd.Tariff.WeekendPrice,
			CleaningFee:   cmd.Tariff.CleaningFee,
			PetFee:        cmd.Tariff.PetFee,
			ExtraGuestFee: cmd.Tariff.ExtraGuestFee,
		},
		MinNights:   cmd.MinNights,
		MaxNights:   cmd.MaxNights,
		InstantBook: cmd.InstantBook,
		Now:         time.Now(),
	})
	if err != nil {
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

	if h.Logger != nil {
		h.Logger.Info("site created", "site_id", site.ID, "property_id", site.PropertyID)
	}
	view := dto.MapSite(site)
	return &view, nil
}

var _ commands.Handler[CreateSiteCommand, *dto.Site] = (*CreateSiteHandler)(nil)
