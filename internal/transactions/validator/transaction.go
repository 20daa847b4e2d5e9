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

type TransactionValidator struct {
	validate *validator.Validate
	cfg      *config.Config
}

func NewTransactionValidator(cfg *config.Config) *TransactionValidator {
	v := validator.New()

	cfg.Log.Info("Transaction validator initialized successfully")

	return &TransactionValidator{
		validate: v,
		cfg:      cfg,
	}
}

func (v *TransactionValidator) Validate(tx *model.Transaction) error {
	if err := v.validate.Struct(tx); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateBusinessRules(tx)
}

func (v *TransactionValidator) validateBusinessRules(tx *model.Transaction) error {
	var errs ValidationErrors

	if tx.ShipmentID == tx.TripID {
		errs = append(errs, ValidationError{
			Field:   "TripID",
			Message: "shipment and trip ids cannot be the same document",
		})
	}

	if tx.SenderPhone == tx.TravelerPhone {
		errs = append(errs, ValidationError{
			Field:   "TravelerPhone",
			Message: "sender and traveler cannot be the same party",
		})
	}

	if tx.Package.Weight > v.cfg.MaxShipmentWeightKg {
		errs = append(errs, ValidationError{
			Field:   "Package.Weight",
			Message: fmt.Sprintf("package weight cannot exceed %.0f kg", v.cfg.MaxShipmentWeightKg),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *TransactionValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "e164":
			message = fmt.Sprintf("%s must be a phone number in E.164 format", err.Field())
		case "iso4217":
			message = fmt.Sprintf("%s must be a valid ISO 4217 currency code", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid document id", err.Field())
		case "len":
			message = fmt.Sprintf("%s must be exactly %s characters", err.Field(), err.Param())
		case "numeric":
			message = fmt.Sprintf("%s must contain only digits", err.Field())
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
