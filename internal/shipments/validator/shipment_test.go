package validator

import (
	"testing"
	"time"

	"carrygo/pkg/config"
	"carrygo/pkg/logger"
	"carrygo/pkg/model"
)

func newTestValidator() *ShipmentValidator {
	return NewShipmentValidator(&config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		MaxShipmentWeightKg: 50,
	})
}

func validShipment() *model.Shipment {
	return &model.Shipment{
		SenderPhone:      "+972541234567",
		Description:      "A box of books",
		Weight:           4,
		DepartureCity:    "tel_aviv",
		DepartureCountry: "israel",
		ArrivalCity:      "berlin",
		ArrivalCountry:   "germany",
		ProposedPrice:    40,
		Currency:         "EUR",
		Status:           model.ShipmentStatusPendingMatch,
		CreatedAt:        time.Now(),
	}
}

func TestValidate_ValidShipment(t *testing.T) {
	v := newTestValidator()
	if err := v.Validate(validShipment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *model.Shipment)
	}{
		{"missing sender phone", func(s *model.Shipment) { s.SenderPhone = "" }},
		{"non e164 phone", func(s *model.Shipment) { s.SenderPhone = "054-123-4567" }},
		{"short description", func(s *model.Shipment) { s.Description = "x" }},
		{"zero weight", func(s *model.Shipment) { s.Weight = 0 }},
		{"negative length", func(s *model.Shipment) { neg := -3.0; s.Length = &neg }},
		{"missing departure city", func(s *model.Shipment) { s.DepartureCity = "" }},
		{"zero proposed price", func(s *model.Shipment) { s.ProposedPrice = 0 }},
		{"bogus currency", func(s *model.Shipment) { s.Currency = "XXXX" }},
		{"unknown status", func(s *model.Shipment) { s.Status = "LOST" }},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validShipment()
			tt.mutate(s)
			if err := v.Validate(s); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_BusinessRules(t *testing.T) {
	v := newTestValidator()

	t.Run("weight above cap", func(t *testing.T) {
		s := validShipment()
		s.Weight = 51
		if err := v.Validate(s); err == nil {
			t.Error("expected error for weight above cap")
		}
	})

	t.Run("identical route endpoints", func(t *testing.T) {
		s := validShipment()
		s.ArrivalCity = s.DepartureCity
		s.ArrivalCountry = s.DepartureCountry
		if err := v.Validate(s); err == nil {
			t.Error("expected error for identical departure and arrival")
		}
	})

	t.Run("same city name in different countries", func(t *testing.T) {
		s := validShipment()
		s.DepartureCity = "springfield"
		s.DepartureCountry = "united_states"
		s.ArrivalCity = "springfield"
		s.ArrivalCountry = "canada"
		if err := v.Validate(s); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
