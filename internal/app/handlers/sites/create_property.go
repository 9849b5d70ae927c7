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
	domainsites "campnest/internal/domain/sites"
)

const createPropertyKey = "sites.create_property"

type CreatePropertyCommand struct {
	HostID      string
	Name        string
	Description string
	Region      string
	Country     string
}

func (c CreatePropertyCommand) Key() string { return createPropertyKey }

type CreatePropertyHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *CreatePropertyHandler) Handle(ctx context.Context, cmd CreatePropertyCommand) (*dto.Property, error) {
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	property, err := domainsites.NewProperty(domainsites.CreatePropertyParams{
		ID:          domainsites.PropertyID(uuid.NewString()),
		Host:        domainsites.HostID(cmd.HostID),
		Name:        cmd.Name,
		Description: cmd.Description,
		Region:      cmd.Region,
		Country:     cmd.Country,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(execCtx, property); err != nil {
		return nil, err
	}
	if err := outbox.Drain(execCtx, h.Outbox, nil, &property.EventRecorder); err != nil {
		return nil, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}

	if h.Logger != nil {
		h.Logger.Info("property created", "property_id", property.ID, "host_id", property.Host)
	}
	view := dto.MapProperty(property)
	return &view, nil
}

var _ commands.Handler[CreatePropertyCommand, *dto.Property] = (*CreatePropertyHandler)(nil)
