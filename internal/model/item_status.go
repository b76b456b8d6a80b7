package model

import "time"

type ItemStatus string

const (
	StatusPreArrival      ItemStatus = "pre_arrival"
	StatusUnused          ItemStatus = "unused"
	StatusInUse           ItemStatus = "in_use"
	StatusUnusedDiscarded ItemStatus = "unused_discarded"
	StatusUsedDiscarded   ItemStatus = "used_discarded"
)

// DeriveStatus maps the three lifecycle timestamps to an item status.
// Discarded wins over used, used over received. purchased_at deliberately
// plays no part: items can be used or discarded without ever being received
// (gifts, hand-me-downs), so the purchase date stays informational only.
func DeriveStatus(discardedAt, usedAt, receivedAt *time.Time) ItemStatus {
	switch {
	case discardedAt != nil && usedAt != nil:
		return StatusUsedDiscarded
	case discardedAt != nil:
		return StatusUnusedDiscarded
	case usedAt != nil:
		return StatusInUse
	case receivedAt != nil:
		return StatusUnused
	default:
		return StatusPreArrival
	}
}

// Status derives the current lifecycle status from the item's timestamps.
func (i *Item) Status() ItemStatus {
	return DeriveStatus(i.DiscardedAt, i.UsedAt, i.ReceivedAt)
}
