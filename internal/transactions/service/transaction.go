package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"carrygo/internal/transactions/events"
	txerrors "carrygo/internal/transactions/errors"
	"carrygo/internal/transactions/repository"
	"carrygo/internal/transactions/validator"
	"carrygo/pkg/capacity"
	"carrygo/pkg/config"
	apperrors "carrygo/pkg/errors"
	"carrygo/pkg/model"
	"carrygo/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type CreateRequest struct {
	ShipmentID  string   `json:"shipment_id"`
	TripID      string   `json:"trip_id"`
	AgreedPrice *float64 `json:"agreed_price,omitempty"`
}

// CreateResult carries the security code alongside the created transaction.
// The code is shown exactly once, in the create response; it is excluded from
// every other serialization of the transaction.
type CreateResult struct {
	Transaction  *model.Transaction `json:"transaction"`
	SecurityCode string             `json:"security_code"`
}

type TransactionService interface {
	Create(ctx context.Context, req *CreateRequest) (*CreateResult, error)
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Transaction, int64, error)
	GetByTrip(ctx context.Context, tripID string, limit int, offset int64) ([]*model.Transaction, int64, error)

	Confirm(ctx context.Context, id, actorPhone string) (*model.Transaction, error)
	Pickup(ctx context.Context, id, actorPhone string) (*model.Transaction, error)
	Deliver(ctx context.Context, id, actorPhone, securityCode string) (*model.Transaction, error)
	Complete(ctx context.Context, id, actorPhone string) (*model.Transaction, error)
	Dispute(ctx context.Context, id, actorPhone string) (*model.Transaction, error)
	Cancel(ctx context.Context, id, actorPhone string) (*model.Transaction, error)
}

type transactionService struct {
	repo      repository.TransactionRepository
	locks     repository.TripLockRepository
	validator *validator.TransactionValidator
	publisher *events.Publisher
	cfg       *config.Config
}

func NewTransactionService(
	repo repository.TransactionRepository,
	locks repository.TripLockRepository,
	validator *validator.TransactionValidator,
	publisher *events.Publisher,
	cfg *config.Config,
) TransactionService {
	return &transactionService{
		repo:      repo,
		locks:     locks,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *transactionService) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	if req.ShipmentID == "" || req.TripID == "" {
		return nil, apperrors.InvalidInput("Shipment ID and trip ID are required")
	}

	shipment, err := s.repo.FindShipment(ctx, req.ShipmentID)
	if err != nil {
		return nil, s.mapRepositoryError("Shipment", req.ShipmentID, err)
	}
	trip, err := s.repo.FindTrip(ctx, req.TripID)
	if err != nil {
		return nil, s.mapRepositoryError("Trip", req.TripID, err)
	}

	if shipment.Status != model.ShipmentStatusPendingMatch {
		return nil, apperrors.Conflict("Shipment is no longer available for matching")
	}
	if !trip.IsBookable() {
		return nil, apperrors.Conflict("Trip is not accepting new transactions")
	}

	price := s.resolvePrice(req, shipment, trip)
	if price < trip.MinimumPrice {
		return nil, apperrors.Validation("Agreed price is below the trip's minimum", map[string]any{
			"agreed_price":  price,
			"minimum_price": trip.MinimumPrice,
		})
	}

	code, err := generateSecurityCode()
	if err != nil {
		s.cfg.Log.Error("Failed to generate security code", "error", err)
		return nil, apperrors.Internal("Failed to create transaction", err)
	}

	tx := &model.Transaction{
		ShipmentID:    shipment.ID,
		TripID:        trip.ID,
		SenderPhone:   shipment.SenderPhone,
		TravelerPhone: trip.TravelerPhone,
		AgreedPrice:   price,
		Currency:      sanitizer.NormalizeCurrency(trip.Currency),
		SecurityCode:  code,
		Package:       shipment.Snapshot(),
		Status:        model.TransactionStatusPending,
	}

	if err := s.validator.Validate(tx); err != nil {
		s.cfg.Log.Warn("Transaction validation failed",
			"shipment_id", tx.ShipmentID,
			"trip_id", tx.TripID,
			"error", err,
		)
		return nil, apperrors.Validation("Transaction validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		s.cfg.Log.Error("Failed to create transaction",
			"shipment_id", tx.ShipmentID,
			"trip_id", tx.TripID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create transaction", err)
	}

	s.cfg.Log.Info("Transaction created",
		"id", tx.ID,
		"shipment_id", tx.ShipmentID,
		"trip_id", tx.TripID,
		"agreed_price", tx.AgreedPrice,
	)
	s.publisher.PublishTransition(ctx, events.TypeCreated, tx)

	return &CreateResult{Transaction: tx, SecurityCode: code}, nil
}

func (s *transactionService) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Transaction ID cannot be empty")
	}

	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepositoryError("Transaction", id, err)
	}
	return tx, nil
}

func (s *transactionService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Transaction, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var txs []*model.Transaction
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count transactions", "error", err)
			errCount = apperrors.Internal("Failed to count transactions", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		txs, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all transactions",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve transactions", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return txs, count, nil
}

func (s *transactionService) GetByTrip(ctx context.Context, tripID string, limit int, offset int64) ([]*model.Transaction, int64, error) {
	if tripID == "" {
		return nil, 0, apperrors.InvalidInput("Trip ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	txs, err := s.repo.FindByTrip(ctx, tripID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to find transactions for trip", "trip_id", tripID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve transactions", err)
	}

	count, err := s.repo.CountByTrip(ctx, tripID)
	if err != nil {
		s.cfg.Log.Error("Failed to count transactions for trip", "trip_id", tripID, "error", err)
		return nil, 0, apperrors.Internal("Failed to count transactions", err)
	}

	return txs, count, nil
}

// Confirm is the only capacity-acquiring transition, so it is serialized per
// trip: insert the advisory lock, re-evaluate capacity from the documents
// committed so far, and only then flip statuses. The lock lives outside the
// Mongo session on purpose; a session-scoped insert would be invisible to
// competing confirmations until commit.
func (s *transactionService) Confirm(ctx context.Context, id, actorPhone string) (*model.Transaction, error) {
	tx, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != model.TransactionStatusPending {
		return nil, transitionConflict(tx.Status, model.TransactionStatusConfirmed)
	}
	if err := requireActor(tx.TravelerPhone, actorPhone, "Only the trip's traveler can confirm"); err != nil {
		return nil, err
	}

	if err := s.locks.Acquire(ctx, tx.TripID); err != nil {
		if errors.Is(err, txerrors.ErrLockHeld) {
			return nil, apperrors.Conflict("Another confirmation for this trip is in progress")
		}
		s.cfg.Log.Error("Failed to acquire trip lock", "trip_id", tx.TripID, "error", err)
		return nil, apperrors.Internal("Failed to confirm transaction", err)
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), tx.TripID); err != nil {
			s.cfg.Log.Error("Failed to release trip lock", "trip_id", tx.TripID, "error", err)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		trip, err := s.repo.FindTrip(sessCtx, tx.TripID)
		if err != nil {
			return s.mapRepositoryError("Trip", tx.TripID, err)
		}
		if !trip.IsBookable() {
			return apperrors.Conflict("Trip is not accepting new transactions")
		}

		active, err := s.repo.FindHoldingCapacity(sessCtx, tx.TripID)
		if err != nil {
			s.cfg.Log.Error("Failed to load active transactions", "trip_id", tx.TripID, "error", err)
			return apperrors.Internal("Failed to confirm transaction", err)
		}

		report := capacity.Evaluate(trip, active)
		if !report.Accepts(tx.Package.Weight) {
			return apperrors.Conflict("Trip no longer has capacity for this shipment").WithDetails(map[string]any{
				"remaining_weight":   report.RemainingWeight,
				"remaining_packages": report.RemainingPackages,
				"package_weight":     tx.Package.Weight,
			})
		}

		now := time.Now().UTC()
		if err := s.repo.UpdateTransition(sessCtx, tx.ID, bson.M{
			"status":       model.TransactionStatusConfirmed,
			"confirmed_at": now,
		}); err != nil {
			return s.mapRepositoryError("Transaction", tx.ID, err)
		}
		tx.Status = model.TransactionStatusConfirmed
		tx.ConfirmedAt = &now

		if err := s.repo.UpdateShipmentStatus(sessCtx, tx.ShipmentID, model.ShipmentStatusMatched); err != nil {
			return s.mapRepositoryError("Shipment", tx.ShipmentID, err)
		}

		// The confirmed transaction now holds capacity; re-derive the trip
		// status from what remains after it.
		report = capacity.Evaluate(trip, append(active, tx))
		tripStatus := model.TripStatusPartiallyBooked
		if report.RemainingPackages <= 0 || report.RemainingWeight <= 0 {
			tripStatus = model.TripStatusFullyBooked
		}
		if trip.Status != tripStatus {
			if err := s.repo.UpdateTripStatus(sessCtx, tx.TripID, tripStatus); err != nil {
				return s.mapRepositoryError("Trip", tx.TripID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Transaction confirmed", "id", tx.ID, "trip_id", tx.TripID)
	s.publisher.PublishTransition(ctx, events.TypeConfirmed, tx)
	return tx, nil
}

func (s *transactionService) Pickup(ctx context.Context, id, actorPhone string) (*model.Transaction, error) {
	tx, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != model.TransactionStatusConfirmed {
		return nil, transitionConflict(tx.Status, model.TransactionStatusInProgress)
	}
	if err := requireActor(tx.TravelerPhone, actorPhone, "Only the trip's traveler can record pickup"); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		now := time.Now().UTC()
		if err := s.repo.UpdateTransition(sessCtx, tx.ID, bson.M{
			"status":       model.TransactionStatusInProgress,
			"picked_up_at": now,
		}); err != nil {
			return s.mapRepositoryError("Transaction", tx.ID, err)
		}
		tx.Status = model.TransactionStatusInProgress
		tx.PickedUpAt = &now

		return s.repo.UpdateShipmentStatus(sessCtx, tx.ShipmentID, model.ShipmentStatusInTransit)
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Package picked up", "id", tx.ID)
	s.publisher.PublishTransition(ctx, events.TypePickedUp, tx)
	return tx, nil
}

func (s *transactionService) Deliver(ctx context.Context, id, actorPhone, securityCode string) (*model.Transaction, error) {
	tx, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != model.TransactionStatusInProgress {
		return nil, transitionConflict(tx.Status, model.TransactionStatusDelivered)
	}
	if err := requireActor(tx.SenderPhone, actorPhone, "Only the shipment's sender can confirm delivery"); err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(securityCode), []byte(tx.SecurityCode)) != 1 {
		s.cfg.Log.Warn("Delivery code mismatch", "id", tx.ID)
		return nil, apperrors.Forbidden("Security code does not match")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		now := time.Now().UTC()
		if err := s.repo.UpdateTransition(sessCtx, tx.ID, bson.M{
			"status":       model.TransactionStatusDelivered,
			"delivered_at": now,
		}); err != nil {
			return s.mapRepositoryError("Transaction", tx.ID, err)
		}
		tx.Status = model.TransactionStatusDelivered
		tx.DeliveredAt = &now

		return s.repo.UpdateShipmentStatus(sessCtx, tx.ShipmentID, model.ShipmentStatusDelivered)
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Package delivered", "id", tx.ID)
	s.publisher.PublishTransition(ctx, events.TypeDelivered, tx)
	return tx, nil
}

// Complete records the simulated payment capture: amount and timestamp only.
func (s *transactionService) Complete(ctx context.Context, id, actorPhone string) (*model.Transaction, error) {
	tx, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != model.TransactionStatusDelivered {
		return nil, transitionConflict(tx.Status, model.TransactionStatusCompleted)
	}
	if err := requireActor(tx.TravelerPhone, actorPhone, "Only the trip's traveler can complete the transaction"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateTransition(ctx, tx.ID, bson.M{
		"status":              model.TransactionStatusCompleted,
		"payment_captured_at": now,
		"payment_amount":      tx.AgreedPrice,
	}); err != nil {
		return nil, s.mapRepositoryError("Transaction", tx.ID, err)
	}
	tx.Status = model.TransactionStatusCompleted
	tx.PaymentCapturedAt = &now
	tx.PaymentAmount = tx.AgreedPrice

	s.cfg.Log.Info("Transaction completed",
		"id", tx.ID,
		"payment_amount", tx.PaymentAmount,
		"currency", tx.Currency,
	)
	s.publisher.PublishTransition(ctx, events.TypeCompleted, tx)
	return tx, nil
}

func (s *transactionService) Dispute(ctx context.Context, id, actorPhone string) (*model.Transaction, error) {
	tx, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}

	switch tx.Status {
	case model.TransactionStatusConfirmed, model.TransactionStatusInProgress, model.TransactionStatusDelivered:
	default:
		return nil, transitionConflict(tx.Status, model.TransactionStatusDisputed)
	}
	if actorPhone != tx.SenderPhone && actorPhone != tx.TravelerPhone {
		return nil, apperrors.Forbidden("Only a party to the transaction can open a dispute")
	}

	if err := s.repo.UpdateTransition(ctx, tx.ID, bson.M{
		"status": model.TransactionStatusDisputed,
	}); err != nil {
		return nil, s.mapRepositoryError("Transaction", tx.ID, err)
	}
	tx.Status = model.TransactionStatusDisputed

	s.cfg.Log.Warn("Transaction disputed", "id", tx.ID, "disputed_by", actorPhone)
	s.publisher.PublishTransition(ctx, events.TypeDisputed, tx)
	return tx, nil
}

// Cancel frees the trip's capacity implicitly: a CANCELED status simply
// leaves the active set, so the next capacity read no longer counts it.
func (s *transactionService) Cancel(ctx context.Context, id, actorPhone string) (*model.Transaction, error) {
	tx, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}

	switch tx.Status {
	case model.TransactionStatusCanceled:
		return tx, nil
	case model.TransactionStatusPending, model.TransactionStatusConfirmed:
	default:
		return nil, transitionConflict(tx.Status, model.TransactionStatusCanceled)
	}
	if actorPhone != tx.SenderPhone && actorPhone != tx.TravelerPhone {
		return nil, apperrors.Forbidden("Only a party to the transaction can cancel it")
	}

	wasConfirmed := tx.Status == model.TransactionStatusConfirmed

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateTransition(sessCtx, tx.ID, bson.M{
			"status": model.TransactionStatusCanceled,
		}); err != nil {
			return s.mapRepositoryError("Transaction", tx.ID, err)
		}
		tx.Status = model.TransactionStatusCanceled

		if err := s.repo.UpdateShipmentStatus(sessCtx, tx.ShipmentID, model.ShipmentStatusPendingMatch); err != nil {
			return s.mapRepositoryError("Shipment", tx.ShipmentID, err)
		}

		// A confirmed cancellation released capacity; a fully booked trip
		// has room again.
		if wasConfirmed {
			trip, err := s.repo.FindTrip(sessCtx, tx.TripID)
			if err != nil {
				return s.mapRepositoryError("Trip", tx.TripID, err)
			}
			if trip.Status == model.TripStatusFullyBooked || trip.Status == model.TripStatusPartiallyBooked {
				active, err := s.repo.FindHoldingCapacity(sessCtx, tx.TripID)
				if err != nil {
					return apperrors.Internal("Failed to re-evaluate trip capacity", err)
				}
				status := model.TripStatusPartiallyBooked
				if len(active) == 0 {
					status = model.TripStatusAvailable
				}
				if trip.Status != status {
					if err := s.repo.UpdateTripStatus(sessCtx, tx.TripID, status); err != nil {
						return s.mapRepositoryError("Trip", tx.TripID, err)
					}
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Transaction canceled", "id", tx.ID, "canceled_by", actorPhone)
	s.publisher.PublishTransition(ctx, events.TypeCanceled, tx)
	return tx, nil
}

func (s *transactionService) loadForTransition(ctx context.Context, id string) (*model.Transaction, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Transaction ID cannot be empty")
	}

	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepositoryError("Transaction", id, err)
	}
	return tx, nil
}

// resolvePrice defaults a missing agreed price to the trip's tariff with the
// minimum as a floor.
func (s *transactionService) resolvePrice(req *CreateRequest, shipment *model.Shipment, trip *model.Trip) float64 {
	if req.AgreedPrice != nil {
		return *req.AgreedPrice
	}
	price := shipment.Weight * trip.PricePerKg
	if price < trip.MinimumPrice {
		price = trip.MinimumPrice
	}
	return price
}

func (s *transactionService) mapRepositoryError(resource, id string, err error) error {
	switch {
	case errors.Is(err, txerrors.ErrNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, txerrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", resource))
	default:
		if appErr, ok := err.(*apperrors.AppError); ok {
			return appErr
		}
		s.cfg.Log.Error("Repository operation failed", "resource", resource, "id", id, "error", err)
		return apperrors.Internal(fmt.Sprintf("Failed to access %s", resource), err)
	}
}

func requireActor(expected, actual, message string) error {
	if actual == "" {
		return apperrors.Unauthorized("Missing X-Phone-Number header")
	}
	if actual != expected {
		return apperrors.Forbidden(message)
	}
	return nil
}

func transitionConflict(from, to string) error {
	return apperrors.Conflict(fmt.Sprintf("Cannot transition transaction from %s to %s", from, to))
}

func generateSecurityCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to draw random code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
