package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roadrescue/dispatch/internal/domain/history"
	"github.com/roadrescue/dispatch/internal/domain/mechanic"
	"github.com/roadrescue/dispatch/internal/domain/user"
)

func strPtr(v string) *string    { return &v }
func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

// Seed populates a store with demo mechanics, a demo user and a bit of
// service history so the API is usable immediately after boot.
func Seed(ctx context.Context, s Store) error {
	mechanics := []mechanic.Draft{
		{
			Name:         "Sarah Johnson",
			BusinessName: "Sarah's Mobile Repair",
			Phone:        "(555) 123-4567",
			Email:        "sarah@mobilerepair.com",
			Latitude:     40.7589,
			Longitude:    -73.9851,
			Address:      "Manhattan, NY",
			Rating:       4.9,
			ReviewCount:  127,
			Services:     []string{"Battery", "Towing", "Tire Service", "Lockout"},
			Availability: mechanic.Available,
			ResponseTime: 12,
			PriceRange:   "$45-120",
			Is24x7:       false,
		},
		{
			Name:         "Mike Rodriguez",
			BusinessName: "QuickFix Auto",
			Phone:        "(555) 234-5678",
			Email:        "mike@quickfixauto.com",
			Latitude:     40.7505,
			Longitude:    -73.9934,
			Address:      "Manhattan, NY",
			Rating:       4.7,
			ReviewCount:  89,
			Services:     []string{"All Services", "Emergency Repair", "Diagnostics"},
			Availability: mechanic.Busy,
			ResponseTime: 25,
			PriceRange:   "$55-150",
			Is24x7:       true,
		},
		{
			Name:         "David Chen",
			BusinessName: "Roadside Heroes",
			Phone:        "(555) 345-6789",
			Email:        "david@roadsideheroes.com",
			Latitude:     40.7614,
			Longitude:    -73.9776,
			Address:      "Manhattan, NY",
			Rating:       4.8,
			ReviewCount:  156,
			Services:     []string{"Towing", "Battery", "Fuel Delivery", "Tire Service"},
			Availability: mechanic.Available,
			ResponseTime: 18,
			PriceRange:   "$40-100",
			Is24x7:       false,
		},
	}

	for _, draft := range mechanics {
		if _, err := s.CreateMechanic(ctx, draft); err != nil {
			return fmt.Errorf("seed mechanic %q: %w", draft.BusinessName, err)
		}
	}

	demoUser, err := s.CreateUser(ctx, user.Draft{
		Username:  "john_doe",
		Name:      "John Doe",
		Email:     "john@example.com",
		Phone:     "(555) 987-6543",
		Address:   strPtr("123 Main Street, Manhattan, NY"),
		Latitude:  floatPtr(40.7580),
		Longitude: floatPtr(-73.9855),
	})
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	entries := []history.Draft{
		{
			UserID:      demoUser.ID,
			MechanicID:  2,
			ServiceType: "Battery Jump",
			Description: "Dead battery in parking garage",
			Price:       55.00,
			Rating:      intPtr(5),
			Review:      strPtr("Quick and professional service"),
			CompletedAt: time.Date(2024, 10, 15, 14, 30, 0, 0, time.UTC),
		},
		{
			UserID:      demoUser.ID,
			MechanicID:  2,
			ServiceType: "Tire Replacement",
			Description: "Flat tire on highway",
			Price:       120.00,
			Rating:      intPtr(4),
			Review:      strPtr("Good service, took a bit longer than expected"),
			CompletedAt: time.Date(2024, 9, 28, 16, 45, 0, 0, time.UTC),
		},
	}

	for _, draft := range entries {
		if _, err := s.CreateHistory(ctx, draft); err != nil {
			return fmt.Errorf("seed history: %w", err)
		}
	}

	return nil
}
