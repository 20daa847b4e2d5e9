package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"carrygo/pkg/config"
	"carrygo/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type TripValidator struct {
	validate *validator.Validate
	cfg      *config.Config
}

func NewTripValidator(cfg *config.Config) *TripValidator {
	v := validator.New()

	cfg.Log.Info("Trip validator initialized successfully")

	return &TripValidator{
		validate: v,
		cfg:      cfg,
	}
}

func (v *TripValidator) Validate(trip *model.Trip) error {
	if err := v.validate.Struct(trip); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateBusinessRules(trip)
}

func (v *TripValidator) validateBusinessRules(trip *model.Trip) error {
	var errs ValidationErrors

	if trip.AvailableWeight > v.cfg.MaxTripWeightKg {
		errs = append(errs, ValidationError{
			Field:   "AvailableWeight",
			Message: fmt.Sprintf("available_weight cannot exceed %.0f kg", v.cfg.MaxTripWeightKg),
		})
	}

	// Only freshly created trips must depart in the future; updates to
	// an in-flight trip keep their original departure.
	if trip.CreatedAt.IsZero() && !trip.DepartureTime.After(time.Now()) {
		errs = append(errs, ValidationError{
			Field:   "DepartureTime",
			Message: "departure_time must be in the future",
		})
	}

	if strings.EqualFold(trip.DepartureCity, trip.ArrivalCity) &&
		strings.EqualFold(trip.DepartureCountry, trip.ArrivalCountry) {
		errs = append(errs, ValidationError{
			Field:   "ArrivalCity",
			Message: "arrival must differ from departure",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *TripValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gtfield":
			message = "arrival_time must be after departure_time"
		case "e164":
			message = fmt.Sprintf("%s must be a phone number in E.164 format", err.Field())
		case "iso4217":
			message = fmt.Sprintf("%s must be a valid ISO 4217 currency code", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
