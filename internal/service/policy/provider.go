package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/bookedbarber/booking-service/internal/config"
	"github.com/bookedbarber/booking-service/internal/domain"
	"github.com/bookedbarber/booking-service/pkg/types"
)

// Provider adapts the externally owned booking configuration into the domain
// policy. The schedule values (business hours, slot duration, lead time) are
// inputs to the engine, never managed by it.
type Provider struct {
	policy   domain.BookingPolicy
	location *time.Location
}

// NewProvider parses and validates the booking configuration once at startup.
func NewProvider(cfg config.BookingConfig) (*Provider, error) {
	start, err := types.NewTimeStringFromString(cfg.BusinessHoursStart)
	if err != nil {
		return nil, fmt.Errorf("business_hours_start: %w", err)
	}
	end, err := types.NewTimeStringFromString(cfg.BusinessHoursEnd)
	if err != nil {
		return nil, fmt.Errorf("business_hours_end: %w", err)
	}
	if !start.IsBefore(end) {
		return nil, fmt.Errorf("business_hours_end %s must be after business_hours_start %s", end, start)
	}
	if cfg.SlotDurationMinutes <= 0 {
		return nil, fmt.Errorf("slot_duration_minutes must be positive, got %d", cfg.SlotDurationMinutes)
	}
	if cfg.MinLeadTimeMinutes < 0 {
		return nil, fmt.Errorf("min_lead_time_minutes must not be negative, got %d", cfg.MinLeadTimeMinutes)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	return &Provider{
		policy: domain.BookingPolicy{
			BusinessHoursStart:  start,
			BusinessHoursEnd:    end,
			SlotDurationMinutes: cfg.SlotDurationMinutes,
			MinLeadTimeMinutes:  cfg.MinLeadTimeMinutes,
		},
		location: loc,
	}, nil
}

// BookingPolicy returns the policy in force.
func (p *Provider) BookingPolicy(_ context.Context) domain.BookingPolicy {
	return p.policy
}

// Location returns the shop timezone all dates are interpreted in.
func (p *Provider) Location() *time.Location {
	return p.location
}
