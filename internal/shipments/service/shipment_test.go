package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	shipmenterrors "carrygo/internal/shipments/errors"
	"carrygo/internal/shipments/validator"
	"carrygo/pkg/config"
	apperrors "carrygo/pkg/errors"
	"carrygo/pkg/logger"
	"carrygo/pkg/model"

	mongotx "carrygo/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockShipmentRepository struct {
	createFunc              func(ctx context.Context, shipment *model.Shipment) error
	findByIDFunc            func(ctx context.Context, id string) (*model.Shipment, error)
	findAllFunc             func(ctx context.Context, limit int, offset int64) ([]*model.Shipment, error)
	updateFunc              func(ctx context.Context, id string, shipment *model.Shipment) (*mongo.UpdateResult, error)
	updateStatusFunc        func(ctx context.Context, id string, status string) error
	countFunc               func(ctx context.Context) (int64, error)
	findByPhoneFunc         func(ctx context.Context, phone string, limit int, offset int64) ([]*model.Shipment, error)
	countByPhoneFunc        func(ctx context.Context, phone string) (int64, error)
	findPendingByRouteFunc  func(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Shipment, error)
	countPendingByRouteFunc func(ctx context.Context, departureCity, arrivalCity string) (int64, error)
}

func (m *mockShipmentRepository) Create(ctx context.Context, shipment *model.Shipment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, shipment)
	}
	shipment.ID = "65f000000000000000000011"
	return nil
}

func (m *mockShipmentRepository) FindByID(ctx context.Context, id string) (*model.Shipment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", shipmenterrors.ErrNotFound, id)
}

func (m *mockShipmentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Shipment, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Shipment{}, nil
}

func (m *mockShipmentRepository) Update(ctx context.Context, id string, shipment *model.Shipment) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, shipment)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockShipmentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockShipmentRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockShipmentRepository) FindByPhone(ctx context.Context, phone string, limit int, offset int64) ([]*model.Shipment, error) {
	if m.findByPhoneFunc != nil {
		return m.findByPhoneFunc(ctx, phone, limit, offset)
	}
	return []*model.Shipment{}, nil
}

func (m *mockShipmentRepository) CountByPhone(ctx context.Context, phone string) (int64, error) {
	if m.countByPhoneFunc != nil {
		return m.countByPhoneFunc(ctx, phone)
	}
	return 0, nil
}

func (m *mockShipmentRepository) FindPendingByRoute(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Shipment, error) {
	if m.findPendingByRouteFunc != nil {
		return m.findPendingByRouteFunc(ctx, departureCity, arrivalCity, limit, offset)
	}
	return []*model.Shipment{}, nil
}

func (m *mockShipmentRepository) CountPendingByRoute(ctx context.Context, departureCity, arrivalCity string) (int64, error) {
	if m.countPendingByRouteFunc != nil {
		return m.countPendingByRouteFunc(ctx, departureCity, arrivalCity)
	}
	return 0, nil
}

func (m *mockShipmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
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
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		DefaultCurrency:     "USD",
		MaxShipmentWeightKg: 50,
	}
}

func newTestService(repo *mockShipmentRepository, cfg *config.Config) ShipmentService {
	return NewShipmentService(repo, validator.NewShipmentValidator(cfg), cfg)
}

func validShipment() *model.Shipment {
	return &model.Shipment{
		SenderPhone:      "+972541234567",
		Description:      "A box of books",
		Weight:           4,
		DepartureCity:    "Tel Aviv",
		DepartureCountry: "Israel",
		ArrivalCity:      "Berlin",
		ArrivalCountry:   "Germany",
		ProposedPrice:    40,
		Currency:         "eur",
	}
}

func TestCreate_SanitizesAndDefaults(t *testing.T) {
	var created *model.Shipment
	repo := &mockShipmentRepository{
		createFunc: func(ctx context.Context, shipment *model.Shipment) error {
			created = shipment
			shipment.ID = "65f000000000000000000011"
			return nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	shipment := validShipment()
	shipment.Status = ""

	if err := svc.Create(context.Background(), shipment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.DepartureCity != "tel_aviv" {
		t.Errorf("expected canonical departure city, got %q", created.DepartureCity)
	}
	if created.Currency != "EUR" {
		t.Errorf("expected normalized currency EUR, got %q", created.Currency)
	}
	if created.Status != model.ShipmentStatusPendingMatch {
		t.Errorf("expected status PENDING_MATCH, got %q", created.Status)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockShipmentRepository{}, newTestConfig())

	shipment := validShipment()
	shipment.Weight = 0

	err := svc.Create(context.Background(), shipment)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error code, got %v", err)
	}
}

func TestCreate_RejectsWeightAboveCap(t *testing.T) {
	svc := newTestService(&mockShipmentRepository{}, newTestConfig())

	shipment := validShipment()
	shipment.Weight = 120

	if err := svc.Create(context.Background(), shipment); err == nil {
		t.Fatal("expected validation error for excessive weight")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(&mockShipmentRepository{}, newTestConfig())

	_, err := svc.GetByID(context.Background(), "65f0000000000000000000ff")
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestUpdate_RejectedAfterMatch(t *testing.T) {
	shipment := validShipment()
	shipment.ID = "65f000000000000000000011"
	shipment.Status = model.ShipmentStatusMatched

	repo := &mockShipmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Shipment, error) {
			return shipment, nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	newWeight := 6.0
	err := svc.Update(context.Background(), shipment.ID, &model.ShipmentUpdate{Weight: &newWeight})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestUpdate_MergesPendingShipment(t *testing.T) {
	shipment := validShipment()
	shipment.ID = "65f000000000000000000011"
	shipment.Status = model.ShipmentStatusPendingMatch
	shipment.Currency = "EUR"
	shipment.DepartureCity = "tel_aviv"
	shipment.DepartureCountry = "israel"
	shipment.ArrivalCity = "berlin"
	shipment.ArrivalCountry = "germany"

	var updated *model.Shipment
	repo := &mockShipmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Shipment, error) {
			return shipment, nil
		},
		updateFunc: func(ctx context.Context, id string, s *model.Shipment) (*mongo.UpdateResult, error) {
			updated = s
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	newWeight := 6.0
	err := svc.Update(context.Background(), shipment.ID, &model.ShipmentUpdate{
		Weight:      &newWeight,
		Description: "A bigger box of books",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Weight != 6 {
		t.Errorf("expected merged weight 6, got %v", updated.Weight)
	}
	if updated.Description != "A bigger box of books" {
		t.Errorf("expected merged description, got %q", updated.Description)
	}
	if updated.SenderPhone != shipment.SenderPhone {
		t.Errorf("sender phone must be immutable, got %q", updated.SenderPhone)
	}
}

func TestCancel_Semantics(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantCode string
	}{
		{"pending shipment cancels", model.ShipmentStatusPendingMatch, ""},
		{"canceled shipment is a no-op", model.ShipmentStatusCanceled, ""},
		{"matched shipment refuses", model.ShipmentStatusMatched, apperrors.CodeConflict},
		{"in transit shipment refuses", model.ShipmentStatusInTransit, apperrors.CodeConflict},
		{"delivered shipment refuses", model.ShipmentStatusDelivered, apperrors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shipment := validShipment()
			shipment.ID = "65f000000000000000000011"
			shipment.Status = tt.status

			repo := &mockShipmentRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Shipment, error) {
					return shipment, nil
				},
			}
			svc := newTestService(repo, newTestConfig())

			err := svc.Cancel(context.Background(), shipment.ID)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if appErr := apperrors.AsAppError(err); appErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestSearch_CanonicalizesRoute(t *testing.T) {
	var gotDeparture, gotArrival string
	repo := &mockShipmentRepository{
		findPendingByRouteFunc: func(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Shipment, error) {
			gotDeparture = departureCity
			gotArrival = arrivalCity
			return []*model.Shipment{validShipment()}, nil
		},
		countPendingByRouteFunc: func(ctx context.Context, departureCity, arrivalCity string) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo, newTestConfig())

	shipments, count, err := svc.Search(context.Background(), "Tel Aviv", "Berlin", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(shipments) != 1 {
		t.Fatalf("expected 1 shipment, got %d", len(shipments))
	}
	if gotDeparture != "tel_aviv" {
		t.Errorf("expected canonical departure city key, got %q", gotDeparture)
	}
	if gotArrival != "berlin" {
		t.Errorf("expected canonical arrival city key, got %q", gotArrival)
	}
}
