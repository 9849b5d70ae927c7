package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainavailability "campnest/internal/domain/availability"
	domainbooking "campnest/internal/domain/booking"
	domainreviews "campnest/internal/domain/reviews"
	domainrange "campnest/internal/domain/shared/daterange"
	domainsites "campnest/internal/domain/sites"
)

// PropertyRepository is an in-memory implementation for tests and demos.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainsites.PropertyID]*domainsites.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainsites.PropertyID]*domainsites.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainsites.PropertyID) (*domainsites.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	property, ok := r.items[id]
	if !ok {
		return nil, domainsites.ErrPropertyNotFound
	}
	return property, nil
}

func (r *PropertyRepository) Save(ctx context.Context, property *domainsites.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[property.ID] = property
	return nil
}

func (r *PropertyRepository) ListByHost(ctx context.Context, host domainsites.HostID) ([]*domainsites.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainsites.Property
	for _, p := range r.items {
		if p.Host == host {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SiteRepository is an in-memory implementation.
type SiteRepository struct {
	mu    sync.RWMutex
	items map[domainsites.SiteID]*domainsites.Site
}

func NewSiteRepository() *SiteRepository {
	return &SiteRepository{items: make(map[domainsites.SiteID]*domainsites.Site)}
}

func (r *SiteRepository) ByID(ctx context.Context, id domainsites.SiteID) (*domainsites.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	site, ok := r.items[id]
	if !ok {
		return nil, domainsites.ErrSiteNotFound
	}
	return site, nil
}

func (r *SiteRepository) Save(ctx context.Context, site *domainsites.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[site.ID] = site
	return nil
}

func (r *SiteRepository) ListByProperty(ctx context.Context, propertyID domainsites.PropertyID) ([]*domainsites.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainsites.Site
	for _, s := range r.items {
		if s.PropertyID == propertyID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// AvailabilityRepository keeps one record per blocked site-day. The single
// mutex makes ClaimRange check-and-insert atomic: whoever takes the lock
// first wins the race for a date.
type AvailabilityRepository struct {
	mu   sync.Mutex
	days map[domainsites.SiteID]map[int64]domainavailability.Record
}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{days: make(map[domainsites.SiteID]map[int64]domainavailability.Record)}
}

func (r *AvailabilityRepository) IsRangeFree(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rangeFreeLocked(siteID, dr), nil
}

func (r *AvailabilityRepository) ClaimRange(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange, blockType domainavailability.BlockType, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	siteDays := r.days[siteID]
	for _, date := range dr.Dates() {
		if rec, ok := siteDays[date.UnixMilli()]; ok {
			if rec.BlockType != blockType || rec.Reason != reason {
				return domainavailability.ErrRangeConflict
			}
		}
	}
	if siteDays == nil {
		siteDays = make(map[int64]domainavailability.Record)
		r.days[siteID] = siteDays
	}
	for _, date := range dr.Dates() {
		siteDays[date.UnixMilli()] = domainavailability.Record{
			SiteID:    siteID,
			Date:      date,
			Available: false,
			BlockType: blockType,
			Reason:    reason,
		}
	}
	return nil
}

func (r *AvailabilityRepository) ReleaseRange(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange, filter domainavailability.BlockType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	siteDays := r.days[siteID]
	for _, date := range dr.Dates() {
		key := date.UnixMilli()
		if rec, ok := siteDays[key]; ok && rec.BlockType == filter {
			delete(siteDays, key)
		}
	}
	return nil
}

func (r *AvailabilityRepository) BlockedInRange(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange) ([]domainavailability.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	siteDays := r.days[siteID]
	var out []domainavailability.Record
	for _, date := range dr.Dates() {
		if rec, ok := siteDays[date.UnixMilli()]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *AvailabilityRepository) UnavailableSites(ctx context.Context, dr domainrange.DateRange) ([]domainsites.SiteID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domainsites.SiteID
	for siteID, siteDays := range r.days {
		for _, date := range dr.Dates() {
			if _, ok := siteDays[date.UnixMilli()]; ok {
				out = append(out, siteID)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *AvailabilityRepository) rangeFreeLocked(siteID domainsites.SiteID, dr domainrange.DateRange) bool {
	siteDays := r.days[siteID]
	for _, date := range dr.Dates() {
		if _, ok := siteDays[date.UnixMilli()]; ok {
			return false
		}
	}
	return true
}

// BookingRepository is an in-memory implementation.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b, nil
}

func (r *BookingRepository) ByCode(ctx context.Context, code string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.items {
		if b.Code == code {
			return b, nil
		}
	}
	return nil, domainbooking.ErrBookingNotFound
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = b
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.GuestID == guestID })
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainsites.HostID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.HostID == hostID })
}

func (r *BookingRepository) ListBySite(ctx context.Context, siteID domainsites.SiteID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.SiteID == siteID })
}

func (r *BookingRepository) ListActiveOverlapping(ctx context.Context, siteID domainsites.SiteID, dr domainrange.DateRange) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool {
		return b.SiteID == siteID && b.Active() && b.Range.Overlaps(dr)
	})
}

func (r *BookingRepository) ListDueForCompletion(ctx context.Context, now time.Time, limit int) ([]*domainbooking.Booking, error) {
	due, err := r.filter(func(b *domainbooking.Booking) bool {
		return b.Status == domainbooking.StatusConfirmed && !b.Range.CheckOut.After(now)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Range.CheckOut.Before(due[j].Range.CheckOut) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *BookingRepository) filter(keep func(*domainbooking.Booking) bool) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ReviewRepository is an in-memory implementation.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainreviews.ReviewID]*domainreviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[domainreviews.ReviewID]*domainreviews.Review)}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return review, nil
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, review := range r.items {
		if review.BookingID == bookingID {
			return review, nil
		}
	}
	return nil, domainreviews.ErrNotFound
}

func (r *ReviewRepository) ListPublishedBySite(ctx context.Context, siteID domainsites.SiteID) ([]*domainreviews.Review, error) {
	return r.filter(func(review *domainreviews.Review) bool {
		return review.Published && review.SiteID == siteID
	})
}

func (r *ReviewRepository) ListPublishedByProperty(ctx context.Context, propertyID domainsites.PropertyID) ([]*domainreviews.Review, error) {
	return r.filter(func(review *domainreviews.Review) bool {
		return review.Published && review.PropertyID == propertyID
	})
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.items {
		if existing.BookingID == review.BookingID && id != review.ID {
			return domainreviews.ErrDuplicate
		}
	}
	r.items[review.ID] = review
	return nil
}

func (r *ReviewRepository) filter(keep func(*domainreviews.Review) bool) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainreviews.Review
	for _, review := range r.items {
		if keep(review) {
			out = append(out, review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
