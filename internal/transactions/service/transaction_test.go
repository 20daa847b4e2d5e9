package service

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"carrygo/internal/transactions/events"
	txerrors "carrygo/internal/transactions/errors"
	"carrygo/internal/transactions/validator"
	"carrygo/pkg/config"
	apperrors "carrygo/pkg/errors"
	"carrygo/pkg/kafka"
	"carrygo/pkg/logger"
	"carrygo/pkg/model"

	mongotx "carrygo/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
)

type mockTransactionRepository struct {
	createFunc              func(ctx context.Context, tx *model.Transaction) error
	findByIDFunc            func(ctx context.Context, id string) (*model.Transaction, error)
	findAllFunc             func(ctx context.Context, limit int, offset int64) ([]*model.Transaction, error)
	countFunc               func(ctx context.Context) (int64, error)
	findByTripFunc          func(ctx context.Context, tripID string, limit int, offset int64) ([]*model.Transaction, error)
	countByTripFunc         func(ctx context.Context, tripID string) (int64, error)
	findHoldingCapacityFunc func(ctx context.Context, tripID string) ([]*model.Transaction, error)
	updateTransitionFunc    func(ctx context.Context, id string, update bson.M) error
	findTripFunc            func(ctx context.Context, tripID string) (*model.Trip, error)
	updateTripStatusFunc    func(ctx context.Context, tripID string, status string) error
	findShipmentFunc        func(ctx context.Context, shipmentID string) (*model.Shipment, error)
	updateShipmentFunc      func(ctx context.Context, shipmentID string, status string) error
}

func (m *mockTransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tx)
	}
	tx.ID = "65f000000000000000000010"
	return nil
}

func (m *mockTransactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", txerrors.ErrNotFound, id)
}

func (m *mockTransactionRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Transaction, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Transaction{}, nil
}

func (m *mockTransactionRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockTransactionRepository) FindByTrip(ctx context.Context, tripID string, limit int, offset int64) ([]*model.Transaction, error) {
	if m.findByTripFunc != nil {
		return m.findByTripFunc(ctx, tripID, limit, offset)
	}
	return []*model.Transaction{}, nil
}

func (m *mockTransactionRepository) CountByTrip(ctx context.Context, tripID string) (int64, error) {
	if m.countByTripFunc != nil {
		return m.countByTripFunc(ctx, tripID)
	}
	return 0, nil
}

func (m *mockTransactionRepository) FindHoldingCapacity(ctx context.Context, tripID string) ([]*model.Transaction, error) {
	if m.findHoldingCapacityFunc != nil {
		return m.findHoldingCapacityFunc(ctx, tripID)
	}
	return []*model.Transaction{}, nil
}

func (m *mockTransactionRepository) UpdateTransition(ctx context.Context, id string, update bson.M) error {
	if m.updateTransitionFunc != nil {
		return m.updateTransitionFunc(ctx, id, update)
	}
	return nil
}

func (m *mockTransactionRepository) FindTrip(ctx context.Context, tripID string) (*model.Trip, error) {
	if m.findTripFunc != nil {
		return m.findTripFunc(ctx, tripID)
	}
	return nil, fmt.Errorf("%w: trip %s", txerrors.ErrNotFound, tripID)
}

func (m *mockTransactionRepository) UpdateTripStatus(ctx context.Context, tripID string, status string) error {
	if m.updateTripStatusFunc != nil {
		return m.updateTripStatusFunc(ctx, tripID, status)
	}
	return nil
}

func (m *mockTransactionRepository) FindShipment(ctx context.Context, shipmentID string) (*model.Shipment, error) {
	if m.findShipmentFunc != nil {
		return m.findShipmentFunc(ctx, shipmentID)
	}
	return nil, fmt.Errorf("%w: shipment %s", txerrors.ErrNotFound, shipmentID)
}

func (m *mockTransactionRepository) UpdateShipmentStatus(ctx context.Context, shipmentID string, status string) error {
	if m.updateShipmentFunc != nil {
		return m.updateShipmentFunc(ctx, shipmentID, status)
	}
	return nil
}

func (m *mockTransactionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockLockRepository struct {
	acquireFunc func(ctx context.Context, tripID string) error
	releaseFunc func(ctx context.Context, tripID string) error
}

func (m *mockLockRepository) Acquire(ctx context.Context, tripID string) error {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, tripID)
	}
	return nil
}

func (m *mockLockRepository) Release(ctx context.Context, tripID string) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, tripID)
	}
	return nil
}

type mockProducer struct {
	published []kafka.Message
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	return nil
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
		MaxTripWeightKg:     100,
		MaxShipmentWeightKg: 50,
		CapacityLockTTL:     30 * time.Second,
	}
}

func newTestService(repo *mockTransactionRepository, locks *mockLockRepository, producer *mockProducer) TransactionService {
	cfg := newTestConfig()
	publisher := events.NewPublisher(producer, "test", cfg.Log)
	return NewTransactionService(repo, locks, validator.NewTransactionValidator(cfg), publisher, cfg)
}

const (
	shipmentID = "65f000000000000000000011"
	tripID     = "65f000000000000000000001"
)

func pendingShipment() *model.Shipment {
	return &model.Shipment{
		ID:               shipmentID,
		SenderPhone:      "+12125551234",
		Description:      "A box of books",
		Weight:           4,
		DepartureCity:    "tel_aviv",
		DepartureCountry: "israel",
		ArrivalCity:      "berlin",
		ArrivalCountry:   "germany",
		ProposedPrice:    40,
		Currency:         "EUR",
		Status:           model.ShipmentStatusPendingMatch,
	}
}

func bookableTrip() *model.Trip {
	return &model.Trip{
		ID:               tripID,
		TravelerPhone:    "+972541234567",
		DepartureCity:    "tel_aviv",
		DepartureCountry: "israel",
		ArrivalCity:      "berlin",
		ArrivalCountry:   "germany",
		DepartureTime:    time.Now().Add(48 * time.Hour),
		ArrivalTime:      time.Now().Add(52 * time.Hour),
		AvailableWeight:  20,
		MaxPackages:      3,
		PricePerKg:       10,
		MinimumPrice:     15,
		Currency:         "EUR",
		Status:           model.TripStatusAvailable,
	}
}

func transactionInStatus(status string) *model.Transaction {
	return &model.Transaction{
		ID:            "65f000000000000000000010",
		ShipmentID:    shipmentID,
		TripID:        tripID,
		SenderPhone:   "+12125551234",
		TravelerPhone: "+972541234567",
		AgreedPrice:   40,
		Currency:      "EUR",
		SecurityCode:  "123456",
		Package:       model.PackageSnapshot{Weight: 4},
		Status:        status,
	}
}

func repoWithDocs(tx *model.Transaction) *mockTransactionRepository {
	return &mockTransactionRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Transaction, error) {
			return tx, nil
		},
		findShipmentFunc: func(ctx context.Context, id string) (*model.Shipment, error) {
			return pendingShipment(), nil
		},
		findTripFunc: func(ctx context.Context, id string) (*model.Trip, error) {
			return bookableTrip(), nil
		},
	}
}

func TestCreate_DenormalizesAndGeneratesCode(t *testing.T) {
	var created *model.Transaction
	repo := repoWithDocs(nil)
	repo.createFunc = func(ctx context.Context, tx *model.Transaction) error {
		created = tx
		tx.ID = "65f000000000000000000010"
		return nil
	}
	producer := &mockProducer{}
	svc := newTestService(repo, &mockLockRepository{}, producer)

	result, err := svc.Create(context.Background(), &CreateRequest{
		ShipmentID: shipmentID,
		TripID:     tripID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Status != model.TransactionStatusPending {
		t.Errorf("expected PENDING status, got %q", created.Status)
	}
	if created.SenderPhone != "+12125551234" || created.TravelerPhone != "+972541234567" {
		t.Errorf("expected denormalized phones, got %q / %q", created.SenderPhone, created.TravelerPhone)
	}
	if created.Package.Weight != 4 {
		t.Errorf("expected package snapshot weight 4, got %v", created.Package.Weight)
	}
	// Default price: 4 kg * 10/kg = 40, above the 15 minimum.
	if created.AgreedPrice != 40 {
		t.Errorf("expected default agreed price 40, got %v", created.AgreedPrice)
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(result.SecurityCode) {
		t.Errorf("expected 6-digit security code, got %q", result.SecurityCode)
	}
	if len(producer.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(producer.published))
	}
	if got := producer.published[0].GetEventType(); got != events.TypeCreated {
		t.Errorf("expected %s event, got %q", events.TypeCreated, got)
	}
	if producer.published[0].Key != created.ID {
		t.Errorf("expected message keyed by transaction id, got %q", producer.published[0].Key)
	}
}

func TestCreate_MinimumPriceFloor(t *testing.T) {
	shipment := pendingShipment()
	shipment.Weight = 1 // tariff price 10, below the 15 minimum

	var created *model.Transaction
	repo := repoWithDocs(nil)
	repo.findShipmentFunc = func(ctx context.Context, id string) (*model.Shipment, error) {
		return shipment, nil
	}
	repo.createFunc = func(ctx context.Context, tx *model.Transaction) error {
		created = tx
		tx.ID = "65f000000000000000000010"
		return nil
	}
	svc := newTestService(repo, &mockLockRepository{}, &mockProducer{})

	if _, err := svc.Create(context.Background(), &CreateRequest{ShipmentID: shipmentID, TripID: tripID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.AgreedPrice != 15 {
		t.Errorf("expected minimum price floor 15, got %v", created.AgreedPrice)
	}
}

func TestCreate_RejectsPriceBelowMinimum(t *testing.T) {
	svc := newTestService(repoWithDocs(nil), &mockLockRepository{}, &mockProducer{})

	low := 5.0
	_, err := svc.Create(context.Background(), &CreateRequest{
		ShipmentID:  shipmentID,
		TripID:      tripID,
		AgreedPrice: &low,
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreate_RejectsMatchedShipment(t *testing.T) {
	shipment := pendingShipment()
	shipment.Status = model.ShipmentStatusMatched

	repo := repoWithDocs(nil)
	repo.findShipmentFunc = func(ctx context.Context, id string) (*model.Shipment, error) {
		return shipment, nil
	}
	svc := newTestService(repo, &mockLockRepository{}, &mockProducer{})

	_, err := svc.Create(context.Background(), &CreateRequest{ShipmentID: shipmentID, TripID: tripID})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestConfirm_HappyPath(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusPending)

	var txUpdate bson.M
	var shipmentStatus, tripStatus string
	repo := repoWithDocs(tx)
	repo.updateTransitionFunc = func(ctx context.Context, id string, update bson.M) error {
		txUpdate = update
		return nil
	}
	repo.updateShipmentFunc = func(ctx context.Context, id string, status string) error {
		shipmentStatus = status
		return nil
	}
	repo.updateTripStatusFunc = func(ctx context.Context, id string, status string) error {
		tripStatus = status
		return nil
	}
	producer := &mockProducer{}
	svc := newTestService(repo, &mockLockRepository{}, producer)

	confirmed, err := svc.Confirm(context.Background(), tx.ID, tx.TravelerPhone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if confirmed.Status != model.TransactionStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %q", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil {
		t.Error("expected confirmed_at to be set")
	}
	if txUpdate["status"] != model.TransactionStatusConfirmed {
		t.Errorf("expected transition update to CONFIRMED, got %v", txUpdate["status"])
	}
	if shipmentStatus != model.ShipmentStatusMatched {
		t.Errorf("expected shipment MATCHED, got %q", shipmentStatus)
	}
	if tripStatus != model.TripStatusPartiallyBooked {
		t.Errorf("expected trip PARTIALLY_BOOKED, got %q", tripStatus)
	}
	if len(producer.published) != 1 || producer.published[0].GetEventType() != events.TypeConfirmed {
		t.Error("expected a confirmed event")
	}
}

func TestConfirm_FillsLastSlot(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusPending)

	trip := bookableTrip()
	trip.MaxPackages = 2
	trip.Status = model.TripStatusPartiallyBooked

	other := transactionInStatus(model.TransactionStatusConfirmed)
	other.ID = "65f000000000000000000020"

	var tripStatus string
	repo := repoWithDocs(tx)
	repo.findTripFunc = func(ctx context.Context, id string) (*model.Trip, error) {
		return trip, nil
	}
	repo.findHoldingCapacityFunc = func(ctx context.Context, id string) ([]*model.Transaction, error) {
		return []*model.Transaction{other}, nil
	}
	repo.updateTripStatusFunc = func(ctx context.Context, id string, status string) error {
		tripStatus = status
		return nil
	}
	svc := newTestService(repo, &mockLockRepository{}, &mockProducer{})

	if _, err := svc.Confirm(context.Background(), tx.ID, tx.TravelerPhone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tripStatus != model.TripStatusFullyBooked {
		t.Errorf("expected trip FULLY_BOOKED after last slot, got %q", tripStatus)
	}
}

func TestConfirm_RejectsWhenCapacityExhausted(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusPending)
	tx.Package.Weight = 15

	heavy := transactionInStatus(model.TransactionStatusConfirmed)
	heavy.ID = "65f000000000000000000020"
	heavy.Package.Weight = 10 // leaves 10 of 20 kg, candidate needs 15

	repo := repoWithDocs(tx)
	repo.findHoldingCapacityFunc = func(ctx context.Context, id string) ([]*model.Transaction, error) {
		return []*model.Transaction{heavy}, nil
	}
	svc := newTestService(repo, &mockLockRepository{}, &mockProducer{})

	_, err := svc.Confirm(context.Background(), tx.ID, tx.TravelerPhone)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestConfirm_LockHeld(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusPending)

	locks := &mockLockRepository{
		acquireFunc: func(ctx context.Context, tripID string) error {
			return fmt.Errorf("%w: trip %s", txerrors.ErrLockHeld, tripID)
		},
	}
	svc := newTestService(repoWithDocs(tx), locks, &mockProducer{})

	_, err := svc.Confirm(context.Background(), tx.ID, tx.TravelerPhone)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestConfirm_ReleasesLock(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusPending)

	released := false
	locks := &mockLockRepository{
		releaseFunc: func(ctx context.Context, tripID string) error {
			released = true
			return nil
		},
	}
	svc := newTestService(repoWithDocs(tx), locks, &mockProducer{})

	if _, err := svc.Confirm(context.Background(), tx.ID, tx.TravelerPhone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !released {
		t.Error("expected lock to be released")
	}
}

func TestConfirm_WrongActor(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusPending)
	svc := newTestService(repoWithDocs(tx), &mockLockRepository{}, &mockProducer{})

	_, err := svc.Confirm(context.Background(), tx.ID, tx.SenderPhone)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected forbidden error, got %v", err)
	}
}

func TestDeliver_WrongCode(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusInProgress)
	svc := newTestService(repoWithDocs(tx), &mockLockRepository{}, &mockProducer{})

	_, err := svc.Deliver(context.Background(), tx.ID, tx.SenderPhone, "000000")
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected forbidden error, got %v", err)
	}
}

func TestDeliver_HappyPath(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusInProgress)

	var shipmentStatus string
	repo := repoWithDocs(tx)
	repo.updateShipmentFunc = func(ctx context.Context, id string, status string) error {
		shipmentStatus = status
		return nil
	}
	producer := &mockProducer{}
	svc := newTestService(repo, &mockLockRepository{}, producer)

	delivered, err := svc.Deliver(context.Background(), tx.ID, tx.SenderPhone, "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered.Status != model.TransactionStatusDelivered || delivered.DeliveredAt == nil {
		t.Errorf("expected DELIVERED with timestamp, got %q", delivered.Status)
	}
	if shipmentStatus != model.ShipmentStatusDelivered {
		t.Errorf("expected shipment DELIVERED, got %q", shipmentStatus)
	}
}

func TestComplete_CapturesPayment(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusDelivered)
	svc := newTestService(repoWithDocs(tx), &mockLockRepository{}, &mockProducer{})

	completed, err := svc.Complete(context.Background(), tx.ID, tx.TravelerPhone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed.Status != model.TransactionStatusCompleted {
		t.Errorf("expected COMPLETED, got %q", completed.Status)
	}
	if completed.PaymentCapturedAt == nil {
		t.Error("expected payment capture timestamp")
	}
	if completed.PaymentAmount != tx.AgreedPrice {
		t.Errorf("expected payment amount %v, got %v", tx.AgreedPrice, completed.PaymentAmount)
	}
}

func TestCancel_ConfirmedFreesTrip(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusConfirmed)

	trip := bookableTrip()
	trip.Status = model.TripStatusFullyBooked

	var shipmentStatus, tripStatus string
	repo := repoWithDocs(tx)
	repo.findTripFunc = func(ctx context.Context, id string) (*model.Trip, error) {
		return trip, nil
	}
	repo.findHoldingCapacityFunc = func(ctx context.Context, id string) ([]*model.Transaction, error) {
		return []*model.Transaction{}, nil
	}
	repo.updateShipmentFunc = func(ctx context.Context, id string, status string) error {
		shipmentStatus = status
		return nil
	}
	repo.updateTripStatusFunc = func(ctx context.Context, id string, status string) error {
		tripStatus = status
		return nil
	}
	svc := newTestService(repo, &mockLockRepository{}, &mockProducer{})

	canceled, err := svc.Cancel(context.Background(), tx.ID, tx.SenderPhone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canceled.Status != model.TransactionStatusCanceled {
		t.Errorf("expected CANCELED, got %q", canceled.Status)
	}
	if shipmentStatus != model.ShipmentStatusPendingMatch {
		t.Errorf("expected shipment back to PENDING_MATCH, got %q", shipmentStatus)
	}
	if tripStatus != model.TripStatusAvailable {
		t.Errorf("expected trip AVAILABLE again, got %q", tripStatus)
	}
}

func TestTransitions_RejectInvalidStates(t *testing.T) {
	tests := []struct {
		name string
		from string
		call func(svc TransactionService, tx *model.Transaction) error
	}{
		{"confirm from confirmed", model.TransactionStatusConfirmed, func(svc TransactionService, tx *model.Transaction) error {
			_, err := svc.Confirm(context.Background(), tx.ID, tx.TravelerPhone)
			return err
		}},
		{"confirm from canceled", model.TransactionStatusCanceled, func(svc TransactionService, tx *model.Transaction) error {
			_, err := svc.Confirm(context.Background(), tx.ID, tx.TravelerPhone)
			return err
		}},
		{"pickup from pending", model.TransactionStatusPending, func(svc TransactionService, tx *model.Transaction) error {
			_, err := svc.Pickup(context.Background(), tx.ID, tx.TravelerPhone)
			return err
		}},
		{"deliver from confirmed", model.TransactionStatusConfirmed, func(svc TransactionService, tx *model.Transaction) error {
			_, err := svc.Deliver(context.Background(), tx.ID, tx.SenderPhone, "123456")
			return err
		}},
		{"complete from in progress", model.TransactionStatusInProgress, func(svc TransactionService, tx *model.Transaction) error {
			_, err := svc.Complete(context.Background(), tx.ID, tx.TravelerPhone)
			return err
		}},
		{"dispute from pending", model.TransactionStatusPending, func(svc TransactionService, tx *model.Transaction) error {
			_, err := svc.Dispute(context.Background(), tx.ID, tx.SenderPhone)
			return err
		}},
		{"cancel from delivered", model.TransactionStatusDelivered, func(svc TransactionService, tx *model.Transaction) error {
			_, err := svc.Cancel(context.Background(), tx.ID, tx.SenderPhone)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := transactionInStatus(tt.from)
			svc := newTestService(repoWithDocs(tx), &mockLockRepository{}, &mockProducer{})

			err := tt.call(svc, tx)
			if err == nil {
				t.Fatal("expected conflict error")
			}
			if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
				t.Errorf("expected conflict error, got %v", err)
			}
		})
	}
}

func TestCancel_AlreadyCanceledIsNoOp(t *testing.T) {
	tx := transactionInStatus(model.TransactionStatusCanceled)
	producer := &mockProducer{}
	svc := newTestService(repoWithDocs(tx), &mockLockRepository{}, producer)

	canceled, err := svc.Cancel(context.Background(), tx.ID, tx.SenderPhone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canceled.Status != model.TransactionStatusCanceled {
		t.Errorf("expected CANCELED, got %q", canceled.Status)
	}
	if len(producer.published) != 0 {
		t.Errorf("expected no event for a no-op cancel, got %d", len(producer.published))
	}
}
