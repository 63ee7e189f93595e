package service

import (
	"time"

	"auction-service/internal/models"
)

// DeriveStatus maps an auction's schedule onto its lifecycle status at a
// given instant. It is the only source of truth for liveness; the persisted
// status column is a cache of this function, refreshed lazily on reads.
// Both boundaries are inclusive: a bid at exactly go-live or exactly the end
// instant is live.
func DeriveStatus(goLiveTime time.Time, durationMinutes int, now time.Time) string {
	if now.Before(goLiveTime) {
		return models.AuctionStatusUpcoming
	}
	end := goLiveTime.Add(time.Duration(durationMinutes) * time.Minute)
	if now.After(end) {
		return models.AuctionStatusClosed
	}
	return models.AuctionStatusActive
}
