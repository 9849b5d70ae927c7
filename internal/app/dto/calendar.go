package dto

import (
	"time"

	"campnest/internal/domain/availability"
)

type CalendarDay struct {
	Date      time.Time `json:"date"`
	BlockType string    `json:"block_type"`
	Reason    string    `json:"reason,omitempty"`
}

type Calendar struct {
	SiteID  string        `json:"site_id"`
	Blocked []CalendarDay `json:"blocked"`
}

func MapCalendar(siteID string, records []availability.Record) Calendar {
	blocked := make([]CalendarDay, 0, len(records))
	for _, r := range records {
		blocked = append(blocked, CalendarDay{
			Date:      r.Date,
			BlockType: string(r.BlockType),
			Reason:    r.Reason,
		})
	}
	return Calendar{SiteID: siteID, Blocked: blocked}
}

type UnavailableSites struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	SiteIDs  []string  `json:"site_ids"`
}
