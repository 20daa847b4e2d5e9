package validator

import (
	"testing"
	"time"

	"carrygo/pkg/config"
	"carrygo/pkg/logger"
	"carrygo/pkg/model"
)

func newTestValidator() *TripValidator {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		MaxTripWeightKg: 100,
	}
	return NewTripValidator(cfg)
}

func baseTrip() *model.Trip {
	return &model.Trip{
		TravelerPhone:    "+972541234567",
		DepartureCity:    "tel_aviv",
		DepartureCountry: "israel",
		ArrivalCity:      "berlin",
		ArrivalCountry:   "germany",
		DepartureTime:    time.Now().Add(24 * time.Hour),
		ArrivalTime:      time.Now().Add(30 * time.Hour),
		AvailableWeight:  20,
		MaxPackages:      3,
		PricePerKg:       10,
		Currency:         "EUR",
		Status:           model.TripStatusAvailable,
	}
}

func TestValidate_ValidTrip(t *testing.T) {
	v := newTestValidator()
	if err := v.Validate(baseTrip()); err != nil {
		t.Errorf("expected valid trip, got %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Trip)
	}{
		{
			name:   "missing traveler phone",
			mutate: func(tr *model.Trip) { tr.TravelerPhone = "" },
		},
		{
			name:   "phone not E.164",
			mutate: func(tr *model.Trip) { tr.TravelerPhone = "054-1234567" },
		},
		{
			name:   "zero available weight",
			mutate: func(tr *model.Trip) { tr.AvailableWeight = 0 },
		},
		{
			name:   "negative available volume",
			mutate: func(tr *model.Trip) { vol := -1.0; tr.AvailableVolume = &vol },
		},
		{
			name:   "arrival before departure",
			mutate: func(tr *model.Trip) { tr.ArrivalTime = tr.DepartureTime.Add(-time.Hour) },
		},
		{
			name:   "invalid currency",
			mutate: func(tr *model.Trip) { tr.Currency = "DOLLARS" },
		},
		{
			name:   "unknown status",
			mutate: func(tr *model.Trip) { tr.Status = "OPEN" },
		},
		{
			name:   "too many packages",
			mutate: func(tr *model.Trip) { tr.MaxPackages = 51 },
		},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := baseTrip()
			tt.mutate(trip)
			if err := v.Validate(trip); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_BusinessRules(t *testing.T) {
	v := newTestValidator()

	t.Run("weight above configured cap", func(t *testing.T) {
		trip := baseTrip()
		trip.AvailableWeight = 150
		if err := v.Validate(trip); err == nil {
			t.Error("expected error for weight above cap")
		}
	})

	t.Run("departure in the past", func(t *testing.T) {
		trip := baseTrip()
		trip.DepartureTime = time.Now().Add(-time.Hour)
		trip.ArrivalTime = time.Now().Add(time.Hour)
		if err := v.Validate(trip); err == nil {
			t.Error("expected error for past departure")
		}
	})

	t.Run("past departure allowed for existing trips", func(t *testing.T) {
		trip := baseTrip()
		trip.CreatedAt = time.Now().Add(-48 * time.Hour)
		trip.DepartureTime = time.Now().Add(-time.Hour)
		trip.ArrivalTime = time.Now().Add(time.Hour)
		if err := v.Validate(trip); err != nil {
			t.Errorf("expected existing trip to validate, got %v", err)
		}
	})

	t.Run("same departure and arrival", func(t *testing.T) {
		trip := baseTrip()
		trip.ArrivalCity = trip.DepartureCity
		trip.ArrivalCountry = trip.DepartureCountry
		if err := v.Validate(trip); err == nil {
			t.Error("expected error for identical route endpoints")
		}
	})
}
