package service

import (
	"testing"
	"time"

	"auction-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	goLive := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	duration := 60

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before go-live", goLive.Add(-time.Minute), models.AuctionStatusUpcoming},
		{"exactly at go-live", goLive, models.AuctionStatusActive},
		{"mid window", goLive.Add(30 * time.Minute), models.AuctionStatusActive},
		{"exactly at end", goLive.Add(60 * time.Minute), models.AuctionStatusActive},
		{"after end", goLive.Add(60*time.Minute + time.Second), models.AuctionStatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(goLive, duration, tt.now))
		})
	}
}

func TestDeriveStatusIsPure(t *testing.T) {
	goLive := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := goLive.Add(10 * time.Minute)

	first := DeriveStatus(goLive, 60, now)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, DeriveStatus(goLive, 60, now))
	}
}
