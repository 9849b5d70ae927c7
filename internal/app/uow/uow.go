package uow

import (
	"context"

	domainavailability "campnest/internal/domain/availability"
	domainbooking "campnest/internal/domain/booking"
	domainreviews "campnest/internal/domain/reviews"
	domainsites "campnest/internal/domain/sites"
)

// UnitOfWork coordinates repositories inside a transaction boundary. The
// calendar claim and the booking write for one request always share a unit
// so a crash cannot leave them disagreeing.
type UnitOfWork interface {
	Properties() domainsites.PropertyRepository
	Sites() domainsites.SiteRepository
	Availability() domainavailability.Repository
	Booking() domainbooking.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
