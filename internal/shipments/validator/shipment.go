package validator

import (
	"errors"
	"fmt"
	"strings"

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

type ShipmentValidator struct {
	validate *validator.Validate
	cfg      *config.Config
}

func NewShipmentValidator(cfg *config.Config) *ShipmentValidator {
	v := validator.New()

	cfg.Log.Info("Shipment validator initialized successfully")

	return &ShipmentValidator{
		validate: v,
		cfg:      cfg,
	}
}

func (v *ShipmentValidator) Validate(shipment *model.Shipment) error {
	if err := v.validate.Struct(shipment); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateBusinessRules(shipment)
}

func (v *ShipmentValidator) validateBusinessRules(shipment *model.Shipment) error {
	var errs ValidationErrors

	if shipment.Weight > v.cfg.MaxShipmentWeightKg {
		errs = append(errs, ValidationError{
			Field:   "Weight",
			Message: fmt.Sprintf("weight cannot exceed %.0f kg", v.cfg.MaxShipmentWeightKg),
		})
	}

	if strings.EqualFold(shipment.DepartureCity, shipment.ArrivalCity) &&
		strings.EqualFold(shipment.DepartureCountry, shipment.ArrivalCountry) {
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

func (v *ShipmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
