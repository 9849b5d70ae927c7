package sites

import "time"

type PropertyCreated struct {
	PropertyID PropertyID
	HostID     HostID
	At         time.Time
}

func (e PropertyCreated) EventName() string     { return "property.created" }
func (e PropertyCreated) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyCreated) OccurredAt() time.Time { return e.At }

type SiteCreated struct {
	SiteID     SiteID
	PropertyID PropertyID
	HostID     HostID
	At         time.Time
}

func (e SiteCreated) EventName() string     { return "site.created" }
func (e SiteCreated) AggregateID() string   { return string(e.SiteID) }
func (e SiteCreated) OccurredAt() time.Time { return e.At }

type SiteActivated struct {
	SiteID SiteID
	At     time.Time
}

func (e SiteActivated) EventName() string     { return "site.activated" }
func (e SiteActivated) AggregateID() string   { return string(e.SiteID) }
func (e SiteActivated) OccurredAt() time.Time { return e.At }

type SiteDeactivated struct {
	SiteID SiteID
	Reason string
	At     time.Time
}

func (e SiteDeactivated) EventName() string     { return "site.deactivated" }
func (e SiteDeactivated) AggregateID() string   { return string(e.SiteID) }
func (e SiteDeactivated) OccurredAt() time.Time { return e.At }

type SiteUpdated struct {
	SiteID SiteID
	At     time.Time
}

func (e SiteUpdated) EventName() string     { return "site.updated" }
func (e SiteUpdated) AggregateID() string   { return string(e.SiteID) }
func (e SiteUpdated) OccurredAt() time.Time { return e.At }
