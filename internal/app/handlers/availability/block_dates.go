package availability

import (
	"context"
	"log/slog"
	"time"

	"campnest/internal/app/commands"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/uow"
	domainavailability "campnest/internal/domain/availability"
	"campnest/internal/domain/shared/daterange"
	"campnest/internal/domain/shared/fault"
	domainsites "campnest/internal/domain/sites"
)

const (
	blockDatesKey   = "availability.block"
	unblockDatesKey = "availability.unblock"
)

// ErrNotSiteHost is returned when the caller does not own the site whose
// calendar they are editing.
var ErrNotSiteHost = fault.Forbidden("site_not_host", "only the site host can edit its calendar")

// BlockDatesCommand puts a manual host block on a range, e.g. for
// maintenance. It fails with the usual range conflict if any date is
// already taken.
type BlockDatesCommand struct {
	HostID string
	SiteID string
	From   time.Time
	To     time.Time
	Reason string
}

func (c BlockDatesCommand) Key() string { return blockDatesKey }

type BlockDatesHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *BlockDatesHandler) Handle(ctx context.Context, cmd BlockDatesCommand) (struct{}, error) {
	var none struct{}
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return none, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := daterange.New(cmd.From, cmd.To)
	if err != nil {
		return none, fault.BadRequest("calendar_window", "invalid calendar window").Wrap(err)
	}

	site, err := unit.Sites().ByID(execCtx, domainsites.SiteID(cmd.SiteID))
	if err != nil {
		return none, err
	}
	if site.Host != domainsites.HostID(cmd.HostID) {
		return none, ErrNotSiteHost
	}

	if err := unit.Availability().ClaimRange(execCtx, site.ID, dr, domainavailability.BlockHostBlocked, cmd.Reason); err != nil {
		return none, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return none, err
		}
	}

	if h.Logger != nil {
		h.Logger.Info("host blocked dates", "site_id", site.ID, "check_in", dr.CheckIn, "check_out", dr.CheckOut)
	}
	return none, nil
}

var _ commands.Handler[BlockDatesCommand, struct{}] = (*BlockDatesHandler)(nil)

// UnblockDatesCommand removes host blocks in a range. Booked dates in the
// same range are untouched.
type UnblockDatesCommand struct {
	HostID string
	SiteID string
	From   time.Time
	To     time.Time
}

func (c UnblockDatesCommand) Key() string { return unblockDatesKey }

type UnblockDatesHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *UnblockDatesHandler) Handle(ctx context.Context, cmd UnblockDatesCommand) (struct{}, error) {
	var none struct{}
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return none, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := daterange.New(cmd.From, cmd.To)
	if err != nil {
		return none, fault.BadRequest("calendar_window", "invalid calendar window").Wrap(err)
	}

	site, err := unit.Sites().ByID(execCtx, domainsites.SiteID(cmd.SiteID))
	if err != nil {
		return none, err
	}
	if site.Host != domainsites.HostID(cmd.HostID) {
		return none, ErrNotSiteHost
	}

	if err := unit.Availability().ReleaseRange(execCtx, site.ID, dr, domainavailability.BlockHostBlocked); err != nil {
		return none, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return none, err
		}
	}
	return none, nil
}

var _ commands.Handler[UnblockDatesCommand, struct{}] = (*UnblockDatesHandler)(nil)
