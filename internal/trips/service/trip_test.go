package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	triperrors "carrygo/internal/trips/errors"
	"carrygo/internal/trips/validator"
	"carrygo/pkg/capacity"
	"carrygo/pkg/config"
	apperrors "carrygo/pkg/errors"
	"carrygo/pkg/logger"
	"carrygo/pkg/model"

	mongotx "carrygo/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockTripRepository struct {
	createFunc       func(ctx context.Context, trip *model.Trip) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Trip, error)
	findAllFunc      func(ctx context.Context, limit int, offset int64) ([]*model.Trip, error)
	updateFunc       func(ctx context.Context, id string, trip *model.Trip) (*mongo.UpdateResult, error)
	updateStatusFunc func(ctx context.Context, id string, status string) error
	countFunc        func(ctx context.Context) (int64, error)
	findByRouteFunc  func(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Trip, error)
	countByRouteFunc func(ctx context.Context, departureCity, arrivalCity string) (int64, error)
	snapshotFunc     func(ctx context.Context, tripID string) (*capacity.Snapshot, error)
	txsForTripsFunc  func(ctx context.Context, tripIDs []string) (map[string][]*model.Transaction, error)
}

func (m *mockTripRepository) Create(ctx context.Context, trip *model.Trip) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, trip)
	}
	trip.ID = "65f000000000000000000001"
	return nil
}

func (m *mockTripRepository) FindByID(ctx context.Context, id string) (*model.Trip, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", triperrors.ErrNotFound, id)
}

func (m *mockTripRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Trip{}, nil
}

func (m *mockTripRepository) Update(ctx context.Context, id string, trip *model.Trip) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, trip)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockTripRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockTripRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockTripRepository) FindByRoute(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Trip, error) {
	if m.findByRouteFunc != nil {
		return m.findByRouteFunc(ctx, departureCity, arrivalCity, limit, offset)
	}
	return []*model.Trip{}, nil
}

func (m *mockTripRepository) CountByRoute(ctx context.Context, departureCity, arrivalCity string) (int64, error) {
	if m.countByRouteFunc != nil {
		return m.countByRouteFunc(ctx, departureCity, arrivalCity)
	}
	return 0, nil
}

func (m *mockTripRepository) TripSnapshot(ctx context.Context, tripID string) (*capacity.Snapshot, error) {
	if m.snapshotFunc != nil {
		return m.snapshotFunc(ctx, tripID)
	}
	return nil, fmt.Errorf("%w: %s", capacity.ErrTripNotFound, tripID)
}

func (m *mockTripRepository) FindTransactionsForTrips(ctx context.Context, tripIDs []string) (map[string][]*model.Transaction, error) {
	if m.txsForTripsFunc != nil {
		return m.txsForTripsFunc(ctx, tripIDs)
	}
	return map[string][]*model.Transaction{}, nil
}

func (m *mockTripRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func newTestConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		DefaultMaxPackages: 1,
		DefaultCurrency:    "USD",
		MaxTripWeightKg:    100,
	}
}

func newTestService(repo *mockTripRepository, cfg *config.Config) TripService {
	return NewTripService(repo, validator.NewTripValidator(cfg), cfg)
}

func validTrip() *model.Trip {
	return &model.Trip{
		TravelerPhone:    "+972541234567",
		DepartureCity:    "Tel Aviv",
		DepartureCountry: "Israel",
		ArrivalCity:      "Berlin",
		ArrivalCountry:   "Germany",
		DepartureTime:    time.Now().Add(48 * time.Hour),
		ArrivalTime:      time.Now().Add(52 * time.Hour),
		AvailableWeight:  20,
		MaxPackages:      3,
		PricePerKg:       10,
		Currency:         "EUR",
	}
}

func activeTransaction(weight float64) *model.Transaction {
	return &model.Transaction{
		ID:            "65f000000000000000000010",
		ShipmentID:    "65f000000000000000000011",
		TripID:        "65f000000000000000000001",
		SenderPhone:   "+12125551234",
		TravelerPhone: "+972541234567",
		AgreedPrice:   30,
		Currency:      "USD",
		Status:        model.TransactionStatusConfirmed,
		Package:       model.PackageSnapshot{Weight: weight},
	}
}

func TestCreate_SanitizesAndDefaults(t *testing.T) {
	var created *model.Trip
	repo := &mockTripRepository{
		createFunc: func(ctx context.Context, trip *model.Trip) error {
			created = trip
			trip.ID = "65f000000000000000000001"
			return nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	trip := validTrip()
	trip.MaxPackages = 0
	trip.Currency = ""
	trip.Status = ""

	if err := svc.Create(context.Background(), trip); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.DepartureCity != "tel_aviv" {
		t.Errorf("expected canonical departure city, got %q", created.DepartureCity)
	}
	if created.MaxPackages != 1 {
		t.Errorf("expected default max_packages 1, got %d", created.MaxPackages)
	}
	if created.Currency != "USD" {
		t.Errorf("expected default currency USD, got %q", created.Currency)
	}
	if created.Status != model.TripStatusAvailable {
		t.Errorf("expected status AVAILABLE, got %q", created.Status)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockTripRepository{}, newTestConfig())

	trip := validTrip()
	trip.AvailableWeight = 0

	err := svc.Create(context.Background(), trip)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error code, got %v", err)
	}
}

func TestCreate_RejectsWeightAboveCap(t *testing.T) {
	svc := newTestService(&mockTripRepository{}, newTestConfig())

	trip := validTrip()
	trip.AvailableWeight = 250

	if err := svc.Create(context.Background(), trip); err == nil {
		t.Fatal("expected validation error for excessive weight")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(&mockTripRepository{}, newTestConfig())

	_, err := svc.GetByID(context.Background(), "65f0000000000000000000ff")
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestGetByID_ZeroTransactionsFullCapacity(t *testing.T) {
	trip := validTrip()
	trip.ID = "65f000000000000000000001"
	trip.Status = model.TripStatusAvailable

	repo := &mockTripRepository{
		snapshotFunc: func(ctx context.Context, tripID string) (*capacity.Snapshot, error) {
			return &capacity.Snapshot{Trip: trip, Transactions: nil}, nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	view, err := svc.GetByID(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.UsedWeight != 0 || view.UsedPackages != 0 {
		t.Errorf("expected zero usage, got used_weight=%v used_packages=%d", view.UsedWeight, view.UsedPackages)
	}
	if view.RemainingWeight != trip.AvailableWeight {
		t.Errorf("expected full remaining weight %v, got %v", trip.AvailableWeight, view.RemainingWeight)
	}
}

func TestCancel_RefusedWithActiveTransactions(t *testing.T) {
	trip := validTrip()
	trip.ID = "65f000000000000000000001"
	trip.Status = model.TripStatusPartiallyBooked

	repo := &mockTripRepository{
		snapshotFunc: func(ctx context.Context, tripID string) (*capacity.Snapshot, error) {
			return &capacity.Snapshot{
				Trip:         trip,
				Transactions: []*model.Transaction{activeTransaction(5)},
			}, nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	err := svc.Cancel(context.Background(), trip.ID)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestCancel_InactiveTransactionsDoNotBlock(t *testing.T) {
	trip := validTrip()
	trip.ID = "65f000000000000000000001"
	trip.Status = model.TripStatusAvailable

	canceled := activeTransaction(5)
	canceled.Status = model.TransactionStatusCanceled
	pending := activeTransaction(3)
	pending.Status = model.TransactionStatusPending

	var newStatus string
	repo := &mockTripRepository{
		snapshotFunc: func(ctx context.Context, tripID string) (*capacity.Snapshot, error) {
			return &capacity.Snapshot{
				Trip:         trip,
				Transactions: []*model.Transaction{canceled, pending},
			}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			newStatus = status
			return nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	if err := svc.Cancel(context.Background(), trip.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newStatus != model.TripStatusCanceled {
		t.Errorf("expected status CANCELED, got %q", newStatus)
	}
}

func TestUpdate_RejectsShrinkBelowUsage(t *testing.T) {
	trip := validTrip()
	trip.ID = "65f000000000000000000001"
	trip.Status = model.TripStatusPartiallyBooked
	trip.AvailableWeight = 20

	repo := &mockTripRepository{
		snapshotFunc: func(ctx context.Context, tripID string) (*capacity.Snapshot, error) {
			return &capacity.Snapshot{
				Trip:         trip,
				Transactions: []*model.Transaction{activeTransaction(8)},
			}, nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	smaller := 5.0
	err := svc.Update(context.Background(), trip.ID, &model.TripUpdate{AvailableWeight: &smaller})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestSearchCompatible_FiltersByCapacity(t *testing.T) {
	roomy := validTrip()
	roomy.ID = "65f000000000000000000001"
	roomy.Status = model.TripStatusAvailable

	full := validTrip()
	full.ID = "65f000000000000000000002"
	full.Status = model.TripStatusPartiallyBooked
	full.MaxPackages = 1

	repo := &mockTripRepository{
		findByRouteFunc: func(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Trip, error) {
			return []*model.Trip{roomy, full}, nil
		},
		txsForTripsFunc: func(ctx context.Context, tripIDs []string) (map[string][]*model.Transaction, error) {
			return map[string][]*model.Transaction{
				full.ID: {activeTransaction(5)},
			}, nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	views, count, err := svc.SearchCompatible(context.Background(), 4, "Tel Aviv", "Berlin", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(views) != 1 {
		t.Fatalf("expected 1 compatible trip, got %d", len(views))
	}
	if views[0].Trip.ID != roomy.ID {
		t.Errorf("expected trip %s, got %s", roomy.ID, views[0].Trip.ID)
	}
}

func TestSearchCompatible_RejectsNonPositiveWeight(t *testing.T) {
	svc := newTestService(&mockTripRepository{}, newTestConfig())

	if _, _, err := svc.SearchCompatible(context.Background(), 0, "", "", 10, 0); err == nil {
		t.Fatal("expected error for zero weight")
	}
}

func TestGetAll_AnnotatesWithCapacity(t *testing.T) {
	trip := validTrip()
	trip.ID = "65f000000000000000000001"
	trip.Status = model.TripStatusPartiallyBooked

	repo := &mockTripRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 1, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Trip, error) {
			return []*model.Trip{trip}, nil
		},
		txsForTripsFunc: func(ctx context.Context, tripIDs []string) (map[string][]*model.Transaction, error) {
			return map[string][]*model.Transaction{
				trip.ID: {activeTransaction(5), activeTransaction(3)},
			}, nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	views, count, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(views) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(views))
	}
	if views[0].UsedWeight != 8 {
		t.Errorf("expected used weight 8, got %v", views[0].UsedWeight)
	}
	if views[0].UsedPackages != 2 {
		t.Errorf("expected 2 used packages, got %d", views[0].UsedPackages)
	}
	if views[0].RemainingWeight != 12 {
		t.Errorf("expected remaining weight 12, got %v", views[0].RemainingWeight)
	}
}
