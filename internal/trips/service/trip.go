package service

import (
	"context"
	"errors"
	"sync"

	triperrors "carrygo/internal/trips/errors"
	"carrygo/internal/trips/repository"
	"carrygo/internal/trips/validator"
	"carrygo/pkg/capacity"
	"carrygo/pkg/config"
	apperrors "carrygo/pkg/errors"
	"carrygo/pkg/model"
	"carrygo/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type TripService interface {
	Create(ctx context.Context, trip *model.Trip) error
	GetByID(ctx context.Context, id string) (*capacity.TripView, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*capacity.TripView, int64, error)
	Update(ctx context.Context, id string, updates *model.TripUpdate) error
	Cancel(ctx context.Context, id string) error
	Capacity(ctx context.Context, id string) (*capacity.Report, error)
	SearchCompatible(ctx context.Context, weight float64, departureCity, arrivalCity string, limit int, offset int64) ([]*capacity.TripView, int64, error)
}

type tripService struct {
	repo      repository.TripRepository
	validator *validator.TripValidator
	cfg       *config.Config
}

func NewTripService(
	repo repository.TripRepository,
	validator *validator.TripValidator,
	cfg *config.Config,
) TripService {
	return &tripService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *tripService) Create(ctx context.Context, trip *model.Trip) error {
	s.sanitize(trip)
	s.applyDefaults(trip)

	if err := s.validator.Validate(trip); err != nil {
		s.cfg.Log.Warn("Trip validation failed",
			"traveler_phone", trip.TravelerPhone,
			"departure_city", trip.DepartureCity,
			"error", err,
		)
		return apperrors.Validation("Trip validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		s.cfg.Log.Error("Failed to create trip",
			"traveler_phone", trip.TravelerPhone,
			"error", err,
		)
		return apperrors.Internal("Failed to create trip", err)
	}

	s.cfg.Log.Info("Trip created successfully",
		"id", trip.ID,
		"departure_city", trip.DepartureCity,
		"arrival_city", trip.ArrivalCity,
		"available_weight", trip.AvailableWeight,
	)
	return nil
}

func (s *tripService) GetByID(ctx context.Context, id string) (*capacity.TripView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Trip ID cannot be empty")
	}

	snapshot, err := s.repo.TripSnapshot(ctx, id)
	if err != nil {
		return nil, s.mapSnapshotError(id, err)
	}

	return capacity.NewTripView(snapshot.Trip, snapshot.Transactions), nil
}

// Capacity returns only the derived capacity report for a trip. A trip
// with zero transactions yields a full-capacity report; a missing trip
// is an error.
func (s *tripService) Capacity(ctx context.Context, id string) (*capacity.Report, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Trip ID cannot be empty")
	}

	snapshot, err := s.repo.TripSnapshot(ctx, id)
	if err != nil {
		return nil, s.mapSnapshotError(id, err)
	}

	report := snapshot.Report()
	return &report, nil
}

func (s *tripService) GetAll(ctx context.Context, limit int, offset int64) ([]*capacity.TripView, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var trips []*model.Trip
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count trips", "error", err)
			errCount = apperrors.Internal("Failed to count trips", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		trips, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all trips",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve trips", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	views, err := s.annotate(ctx, trips)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (s *tripService) Update(ctx context.Context, id string, updates *model.TripUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Trip ID cannot be empty")
	}

	s.sanitizeUpdate(updates)

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		snapshot, err := s.repo.TripSnapshot(sessCtx, id)
		if err != nil {
			return s.mapSnapshotError(id, err)
		}

		merged := s.mergeTripUpdates(snapshot.Trip, updates)
		if err := s.validator.Validate(merged); err != nil {
			return apperrors.Validation("Trip validation failed", map[string]any{
				"error": err.Error(),
			})
		}

		// Shrinking the trip below what confirmed transactions already
		// consume would make the remaining capacity negative.
		report := capacity.Evaluate(merged, snapshot.Transactions)
		if report.RemainingWeight < 0 || report.RemainingPackages < 0 {
			return apperrors.Conflict("Trip capacity cannot be reduced below its confirmed usage")
		}

		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			s.cfg.Log.Error("Failed to update trip", "id", id, "error", err)
			return apperrors.Internal("Failed to update trip", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Trip updated successfully", "id", id)
	return nil
}

func (s *tripService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Trip ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		snapshot, err := s.repo.TripSnapshot(sessCtx, id)
		if err != nil {
			return s.mapSnapshotError(id, err)
		}

		if snapshot.Trip.Status == model.TripStatusCanceled {
			return nil
		}
		if snapshot.Trip.Status == model.TripStatusCompleted {
			return apperrors.Conflict("Completed trips cannot be canceled")
		}

		report := snapshot.Report()
		if report.UsedPackages > 0 {
			return apperrors.Conflict("Trip has active transactions and cannot be canceled")
		}

		return s.repo.UpdateStatus(sessCtx, id, model.TripStatusCanceled)
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Trip canceled", "id", id)
	return nil
}

func (s *tripService) SearchCompatible(ctx context.Context, weight float64, departureCity, arrivalCity string, limit int, offset int64) ([]*capacity.TripView, int64, error) {
	if weight <= 0 {
		return nil, 0, apperrors.InvalidInput("Weight must be greater than zero")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)
	departureCity = sanitizer.SanitizeCity(departureCity)
	arrivalCity = sanitizer.SanitizeCity(arrivalCity)

	trips, err := s.repo.FindByRoute(ctx, departureCity, arrivalCity, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to search trips by route",
			"departure_city", departureCity,
			"arrival_city", arrivalCity,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to search trips", err)
	}

	views, err := s.annotate(ctx, trips)
	if err != nil {
		return nil, 0, err
	}

	compatible := make([]*capacity.TripView, 0, len(views))
	for _, view := range views {
		if view.Accepts(weight) {
			compatible = append(compatible, view)
		}
	}

	s.cfg.Log.Debug("Compatible trip search completed",
		"weight", weight,
		"departure_city", departureCity,
		"arrival_city", arrivalCity,
		"candidates", len(views),
		"compatible", len(compatible),
	)

	return compatible, int64(len(compatible)), nil
}

// annotate evaluates capacity for a page of trips with a single batched
// transaction read.
func (s *tripService) annotate(ctx context.Context, trips []*model.Trip) ([]*capacity.TripView, error) {
	ids := make([]string, 0, len(trips))
	for _, trip := range trips {
		ids = append(ids, trip.ID)
	}

	txsByTrip, err := s.repo.FindTransactionsForTrips(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to load transactions for trips", "error", err)
		return nil, apperrors.Internal("Failed to evaluate trip capacity", err)
	}

	views := make([]*capacity.TripView, 0, len(trips))
	for _, trip := range trips {
		views = append(views, capacity.NewTripView(trip, txsByTrip[trip.ID]))
	}
	return views, nil
}

func (s *tripService) mapSnapshotError(id string, err error) error {
	switch {
	case errors.Is(err, capacity.ErrTripNotFound), errors.Is(err, triperrors.ErrNotFound):
		return apperrors.NotFoundWithID("Trip", id)
	case errors.Is(err, triperrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid trip ID format")
	default:
		s.cfg.Log.Error("Failed to load trip snapshot", "id", id, "error", err)
		return apperrors.Internal("Failed to retrieve trip", err)
	}
}

func (s *tripService) sanitize(trip *model.Trip) {
	trip.TravelerPhone = sanitizer.NormalizePhone(trip.TravelerPhone)
	trip.DepartureCity = sanitizer.SanitizeCity(trip.DepartureCity)
	trip.DepartureCountry = sanitizer.SanitizeCity(trip.DepartureCountry)
	trip.ArrivalCity = sanitizer.SanitizeCity(trip.ArrivalCity)
	trip.ArrivalCountry = sanitizer.SanitizeCity(trip.ArrivalCountry)
	trip.Currency = sanitizer.NormalizeCurrency(trip.Currency)
}

func (s *tripService) sanitizeUpdate(updates *model.TripUpdate) {
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

func (s *tripService) applyDefaults(trip *model.Trip) {
	if trip.MaxPackages == 0 {
		trip.MaxPackages = s.cfg.DefaultMaxPackages
	}
	if trip.Currency == "" {
		trip.Currency = s.cfg.DefaultCurrency
	}
	if trip.Status == "" {
		trip.Status = model.TripStatusAvailable
	}
}

func (s *tripService) mergeTripUpdates(existing *model.Trip, updates *model.TripUpdate) *model.Trip {
	merged := *existing

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
	if updates.DepartureTime != nil {
		merged.DepartureTime = *updates.DepartureTime
	}
	if updates.ArrivalTime != nil {
		merged.ArrivalTime = *updates.ArrivalTime
	}
	if updates.AvailableWeight != nil {
		merged.AvailableWeight = *updates.AvailableWeight
	}
	if updates.AvailableVolume != nil {
		merged.AvailableVolume = updates.AvailableVolume
	}
	if updates.MaxPackages != nil {
		merged.MaxPackages = *updates.MaxPackages
	}
	if updates.PricePerKg != nil {
		merged.PricePerKg = *updates.PricePerKg
	}
	if updates.MinimumPrice != nil {
		merged.MinimumPrice = *updates.MinimumPrice
	}
	if updates.Currency != "" {
		merged.Currency = updates.Currency
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	merged.ID = existing.ID
	merged.TravelerPhone = existing.TravelerPhone
	merged.CreatedAt = existing.CreatedAt
	return &merged
}
