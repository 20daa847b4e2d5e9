package service

import (
	"context"
	"errors"
	"sync"

	shipmenterrors "carrygo/internal/shipments/errors"
	"carrygo/internal/shipments/repository"
	"carrygo/internal/shipments/validator"
	"carrygo/pkg/config"
	apperrors "carrygo/pkg/errors"
	"carrygo/pkg/model"
	"carrygo/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type ShipmentService interface {
	Create(ctx context.Context, shipment *model.Shipment) error
	GetByID(ctx context.Context, id string) (*model.Shipment, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Shipment, int64, error)
	Update(ctx context.Context, id string, updates *model.ShipmentUpdate) error
	Cancel(ctx context.Context, id string) error
	Search(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Shipment, int64, error)
}

type shipmentService struct {
	repo      repository.ShipmentRepository
	validator *validator.ShipmentValidator
	cfg       *config.Config
}

func NewShipmentService(
	repo repository.ShipmentRepository,
	validator *validator.ShipmentValidator,
	cfg *config.Config,
) ShipmentService {
	return &shipmentService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *shipmentService) Create(ctx context.Context, shipment *model.Shipment) error {
	s.sanitize(shipment)
	s.applyDefaults(shipment)

	if err := s.validator.Validate(shipment); err != nil {
		s.cfg.Log.Warn("Shipment validation failed",
			"sender_phone", shipment.SenderPhone,
			"departure_city", shipment.DepartureCity,
			"error", err,
		)
		return apperrors.Validation("Shipment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		s.cfg.Log.Error("Failed to create shipment",
			"sender_phone", shipment.SenderPhone,
			"error", err,
		)
		return apperrors.Internal("Failed to create shipment", err)
	}

	s.cfg.Log.Info("Shipment created successfully",
		"id", shipment.ID,
		"departure_city", shipment.DepartureCity,
		"arrival_city", shipment.ArrivalCity,
		"weight", shipment.Weight,
	)
	return nil
}

func (s *shipmentService) GetByID(ctx context.Context, id string) (*model.Shipment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Shipment ID cannot be empty")
	}

	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepositoryError(id, err)
	}
	return shipment, nil
}

func (s *shipmentService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Shipment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var shipments []*model.Shipment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count shipments", "error", err)
			errCount = apperrors.Internal("Failed to count shipments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		shipments, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all shipments",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve shipments", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return shipments, count, nil
}

func (s *shipmentService) Update(ctx context.Context, id string, updates *model.ShipmentUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Shipment ID cannot be empty")
	}

	s.sanitizeUpdate(updates)

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapRepositoryError(id, err)
		}

		// Once a shipment is matched its physical attributes are frozen in the
		// transaction's package snapshot. Edits after that point would let the
		// shipment drift away from what the traveler agreed to carry.
		if existing.Status != model.ShipmentStatusPendingMatch {
			return apperrors.Conflict("Only unmatched shipments can be edited")
		}

		merged := s.mergeShipmentUpdates(existing, updates)
		if err := s.validator.Validate(merged); err != nil {
			return apperrors.Validation("Shipment validation failed", map[string]any{
				"error": err.Error(),
			})
		}

		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			s.cfg.Log.Error("Failed to update shipment", "id", id, "error", err)
			return apperrors.Internal("Failed to update shipment", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Shipment updated successfully", "id", id)
	return nil
}

func (s *shipmentService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Shipment ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapRepositoryError(id, err)
		}

		switch existing.Status {
		case model.ShipmentStatusCanceled:
			return nil
		case model.ShipmentStatusDelivered:
			return apperrors.Conflict("Delivered shipments cannot be canceled")
		case model.ShipmentStatusMatched, model.ShipmentStatusInTransit:
			return apperrors.Conflict("Shipment has an active transaction and cannot be canceled")
		}

		return s.repo.UpdateStatus(sessCtx, id, model.ShipmentStatusCanceled)
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Shipment canceled", "id", id)
	return nil
}

func (s *shipmentService) Search(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Shipment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)
	departureCity = sanitizer.SanitizeCity(departureCity)
	arrivalCity = sanitizer.SanitizeCity(arrivalCity)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var shipments []*model.Shipment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountPendingByRoute(sharedCtx, departureCity, arrivalCity)
		if err != nil {
			s.cfg.Log.Error("Failed to count shipments by route", "error", err)
			errCount = apperrors.Internal("Failed to count shipments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		shipments, err = s.repo.FindPendingByRoute(sharedCtx, departureCity, arrivalCity, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search shipments by route",
				"departure_city", departureCity,
				"arrival_city", arrivalCity,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search shipments", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Shipment route search completed",
		"departure_city", departureCity,
		"arrival_city", arrivalCity,
		"results", len(shipments),
	)
	return shipments, count, nil
}

func (s *shipmentService) mapRepositoryError(id string, err error) error {
	switch {
	case errors.Is(err, shipmenterrors.ErrNotFound):
		return apperrors.NotFoundWithID("Shipment", id)
	case errors.Is(err, shipmenterrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid shipment ID format")
	default:
		s.cfg.Log.Error("Failed to load shipment", "id", id, "error", err)
		return apperrors.Internal("Failed to retrieve shipment", err)
	}
}

func (s *shipmentService) sanitize(shipment *model.Shipment) {
	shipment.SenderPhone = sanitizer.NormalizePhone(shipment.SenderPhone)
	shipment.Description = sanitizer.NormalizeDescription(shipment.Description)
	shipment.DepartureCity = sanitizer.SanitizeCity(shipment.DepartureCity)
	shipment.DepartureCountry = sanitizer.SanitizeCity(shipment.DepartureCountry)
	shipment.ArrivalCity = sanitizer.SanitizeCity(shipment.ArrivalCity)
	shipment.ArrivalCountry = sanitizer.SanitizeCity(shipment.ArrivalCountry)
	shipment.Currency = sanitizer.NormalizeCurrency(shipment.Currency)
}

func (s *shipmentService) sanitizeUpdate(updates *model.ShipmentUpdate) {
	if updates.Description != "" {
		updates.Description = sanitizer.NormalizeDescription(updates.Description)
	}
	if updates.DepartureCity != "" {
		updates.DepartureCity = sanitizer.SanitizeCity(updates.DepartureCity)
	}
	if updates.DepartureCountry != "" {
		updates.DepartureCountry = sanitizer.SanitizeCity(updates.DepartureCountry)
	}
	if updates.ArrivalCity != "" {
		updates.ArrivalCity = sanitizer.SanitizeCity(updates.ArrivalCity)
	}
	if updates.ArrivalCountry != "" {
		updates.ArrivalCountry = sanitizer.SanitizeCity(updates.ArrivalCountry)
	}
	if updates.Currency != "" {
		updates.Currency = sanitizer.NormalizeCurrency(updates.Currency)
	}
}

func (s *shipmentService) applyDefaults(shipment *model.Shipment) {
	if shipment.Currency == "" {
		shipment.Currency = s.cfg.DefaultCurrency
	}
	if shipment.Status == "" {
		shipment.Status = model.ShipmentStatusPendingMatch
	}
}

func (s *shipmentService) mergeShipmentUpdates(existing *model.Shipment, updates *model.ShipmentUpdate) *model.Shipment {
	merged := *existing

	if updates.Description != "" {
		merged.Description = updates.Description
	}
	if updates.Weight != nil {
		merged.Weight = *updates.Weight
	}
	if updates.Length != nil {
		merged.Length = updates.Length
	}
	if updates.Width != nil {
		merged.Width = updates.Width
	}
	if updates.Height != nil {
		merged.Height = updates.Height
	}
	if updates.DepartureCity != "" {
		merged.DepartureCity = updates.DepartureCity
	}
	if updates.DepartureCountry != "" {
		merged.DepartureCountry = updates.DepartureCountry
	}
	if updates.ArrivalCity != "" {
		merged.ArrivalCity = updates.ArrivalCity
	}
	if updates.ArrivalCountry != "" {
		merged.ArrivalCountry = updates.ArrivalCountry
	}
	if updates.ProposedPrice != nil {
		merged.ProposedPrice = *updates.ProposedPrice
	}
	if updates.Currency != "" {
		merged.Currency = updates.Currency
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	merged.ID = existing.ID
	merged.SenderPhone = existing.SenderPhone
	merged.CreatedAt = existing.CreatedAt
	return &merged
}
