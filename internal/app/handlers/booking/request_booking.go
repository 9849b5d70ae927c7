package booking

import (
	"context"
	"log/slog"
	"time"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	handlersupport "campnest/internal/app/handlers/support"
	"campnest/internal/app/middleware"
	"campnest/internal/app/outbox"
	"campnest/internal/app/uow"
	domainavailability "campnest/internal/domain/availability"
	domainbooking "campnest/internal/domain/booking"
	domainpricing "campnest/internal/domain/pricing"
	domainrange "campnest/internal/domain/shared/daterange"
	"campnest/internal/domain/shared/fault"
	domainsites "campnest/internal/domain/sites"
)

const requestBookingKey = "booking.request"

var (
	ErrTooManyGuests   = fault.BadRequest("booking_too_many_guests", "guest count exceeds site capacity")
	ErrTooManyPets     = fault.BadRequest("booking_too_many_pets", "pet count exceeds site pet limit")
	ErrPetsNotAllowed  = fault.BadRequest("booking_pets_not_allowed", "site does not allow pets")
	ErrTooManyVehicles = fault.BadRequest("booking_too_many_vehicles", "vehicle count exceeds site vehicle limit")
	ErrStayTooShort    = fault.BadRequest("booking_stay_too_short", "stay is shorter than the site minimum")
	ErrStayTooLong     = fault.BadRequest("booking_stay_too_long", "stay is longer than the site maximum")
)

type RequestBookingCommand struct {
	CommandID       string
	SiteID          string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	Pets            int
	Vehicles        int
	Message         string
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &dto.Booking{} }

// RequestBookingHandler runs the create transition: validate against site
// policy, detect conflicts, atomically claim the calendar range, snapshot
// pricing, persist the booking. The checkout link is requested after commit
// by the CheckoutLink middleware; the reservation never waits on the
// provider.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Detector   ConflictDetector
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.Booking, error) {
	unit, execCtx, commit, cleanup, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, fault.BadRequest("booking_dates", "invalid date range").Wrap(err)
	}
	now := time.Now().UTC()
	if err := domainrange.ValidateNotPast(dr, now); err != nil {
		return nil, fault.BadRequest("booking_dates_past", "check-in date is in the past").Wrap(err)
	}

	site, err := unit.Sites().ByID(execCtx, domainsites.SiteID(cmd.SiteID))
	if err != nil {
		return nil, err
	}
	if err := h.checkPolicy(site, dr, cmd); err != nil {
		return nil, err
	}

	conflict, err := h.Detector.HasConflict(execCtx, unit, site.ID, dr)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domainavailability.ErrRangeConflict
	}

	price, err := domainpricing.Calculate(domainpricing.Input{
		Tariff:        site.Tariff,
		Capacity:      site.Capacity,
		Nights:        dr.Nights(),
		WeekendNights: countWeekendNights(dr),
		Guests:        cmd.Guests,
		Pets:          cmd.Pets,
	})
	if err != nil {
		return nil, err
	}

	code := domainbooking.NewCode()
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:      domainbooking.BookingID(cmd.CommandID),
		Code:    code,
		Site:    site,
		GuestID: cmd.GuestID,
		Range:   dr,
		Occupancy: domainbooking.Occupancy{
			Guests:   cmd.Guests,
			Pets:     cmd.Pets,
			Vehicles: cmd.Vehicles,
		},
		Price:        price,
		Schedule:     domainbooking.DefaultSchedule(),
		GuestMessage: cmd.Message,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}

	// The claim is the exclusivity check: a racing request for the same
	// dates loses here with a conflict, after passing the detector above.
	if err := unit.Availability().ClaimRange(execCtx, site.ID, dr, domainavailability.BlockBooked, code); err != nil {
		return nil, err
	}

	if err := unit.Booking().Save(execCtx, b); err != nil {
		return nil, err
	}
	if err := outbox.Drain(execCtx, h.Outbox, h.encoder(), &b.EventRecorder); err != nil {
		return nil, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested", "booking_id", b.ID, "code", b.Code, "site_id", b.SiteID, "status", b.Status, "nights", b.Nights)
	}

	view := dto.MapBooking(b)
	return &view, nil
}

func (h *RequestBookingHandler) checkPolicy(site *domainsites.Site, dr domainrange.DateRange, cmd RequestBookingCommand) error {
	if site.State != domainsites.SiteActive {
		return domainsites.ErrSiteInactive
	}
	if cmd.Guests <= 0 {
		return domainbooking.ErrInvalidOccupancy
	}
	// Guests beyond the included capacity are accepted only when the tariff
	// prices the overage; otherwise capacity is a hard limit.
	if cmd.Guests > site.Capacity.MaxGuests && site.Tariff.ExtraGuestFee <= 0 {
		return ErrTooManyGuests
	}
	if cmd.Pets > 0 && !site.Capacity.AllowsPets() {
		return ErrPetsNotAllowed
	}
	if cmd.Pets > site.Capacity.MaxPets {
		return ErrTooManyPets
	}
	if cmd.Vehicles > site.Capacity.MaxVehicles {
		return ErrTooManyVehicles
	}
	nights := dr.Nights()
	if nights < site.MinNights {
		return ErrStayTooShort
	}
	if site.MaxNights > 0 && nights > site.MaxNights {
		return ErrStayTooLong
	}
	return nil
}

// countWeekendNights counts nights billed at the weekend rate: Friday and
// Saturday nights.
func countWeekendNights(dr domainrange.DateRange) int {
	count := 0
	for _, date := range dr.Dates() {
		switch date.Weekday() {
		case time.Friday, time.Saturday:
			count++
		}
	}
	return count
}

var _ commands.Handler[RequestBookingCommand, *dto.Booking] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}
