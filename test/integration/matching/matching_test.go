package integrationtests

import (
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"testing"
	"time"

	"carrygo/pkg/client"
	"carrygo/pkg/config"
	"carrygo/pkg/model"
)

const ServiceName = "matching-integration-tests"

var (
	cfg                *config.Config
	tripsClient        *client.TripClient
	shipmentsClient    *client.ShipmentClient
	transactionsClient *client.TransactionClient
	transactionsHTTP   *client.HttpClient
)

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		fmt.Println("Skipping integration tests: INTEGRATION_TESTS not set")
		os.Exit(0)
	}

	cfg = config.Load(ServiceName)
	tripsClient = client.NewTripClient(cfg.TripsBaseURL)
	shipmentsClient = client.NewShipmentClient(cfg.ShipmentsBaseURL)
	transactionsClient = client.NewTransactionClient(cfg.TransactionsBaseURL)
	transactionsHTTP = client.NewHttpClient(cfg.TransactionsBaseURL)

	code := m.Run()
	cfg.GracefulShutdown()
	os.Exit(code)
}

// --- Helpers ---

func randomPhone() string {
	return fmt.Sprintf("+97250%07d", rand.Intn(10000000))
}

func validTrip(travelerPhone string) map[string]any {
	departure := time.Now().Add(48 * time.Hour).UTC()
	return map[string]any{
		"traveler_phone":    travelerPhone,
		"departure_city":    "Tel Aviv",
		"departure_country": "Israel",
		"arrival_city":      "Berlin",
		"arrival_country":   "Germany",
		"departure_time":    departure.Format(time.RFC3339),
		"arrival_time":      departure.Add(5 * time.Hour).Format(time.RFC3339),
		"available_weight":  10.0,
		"max_packages":      2,
		"price_per_kg":      8.0,
		"minimum_price":     20.0,
		"currency":          "EUR",
	}
}

func validShipment(senderPhone string, weight float64) map[string]any {
	return map[string]any{
		"sender_phone":      senderPhone,
		"description":       "Sealed box of books",
		"weight":            weight,
		"departure_city":    "Tel Aviv",
		"departure_country": "Israel",
		"arrival_city":      "Berlin",
		"arrival_country":   "Germany",
		"proposed_price":    45.0,
		"currency":          "EUR",
	}
}

func createTrip(t *testing.T, travelerPhone string) *model.Trip {
	t.Helper()
	resp, err := tripsClient.Create(validTrip(travelerPhone))
	if err != nil {
		t.Fatalf("trip create request failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("trip create: %s", resp.ToString())
	}
	view, err := tripsClient.DecodeTrip(resp)
	if err != nil {
		t.Fatalf("decode trip: %v", err)
	}
	return view.Trip
}

func createShipment(t *testing.T, senderPhone string, weight float64) *model.Shipment {
	t.Helper()
	resp, err := shipmentsClient.Create(validShipment(senderPhone, weight))
	if err != nil {
		t.Fatalf("shipment create request failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("shipment create: %s", resp.ToString())
	}
	shipment, err := shipmentsClient.DecodeShipment(resp)
	if err != nil {
		t.Fatalf("decode shipment: %v", err)
	}
	return shipment
}

type createdTransaction struct {
	Transaction  *model.Transaction `json:"transaction"`
	SecurityCode string             `json:"security_code"`
}

func createTransaction(t *testing.T, shipmentID, tripID string) *createdTransaction {
	t.Helper()
	resp, err := transactionsClient.Create(map[string]any{
		"shipment_id": shipmentID,
		"trip_id":     tripID,
	})
	if err != nil {
		t.Fatalf("transaction create request failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("transaction create: %s", resp.ToString())
	}

	var wrapper struct {
		Data createdTransaction `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		t.Fatalf("decode transaction create response: %v", err)
	}
	return &wrapper.Data
}

func transition(t *testing.T, id, action, actorPhone string, body any) *client.Response {
	t.Helper()
	path := "/api/v1/transactions/id/" + url.PathEscape(id) + "/" + action
	resp, err := transactionsHTTP.POSTWithHeaders(path, body, map[string]string{
		"X-Phone-Number": actorPhone,
	})
	if err != nil {
		t.Fatalf("%s request failed: %v", action, err)
	}
	return resp
}

func fetchTrip(t *testing.T, id string) *model.Trip {
	t.Helper()
	resp, err := tripsClient.GetByID(id)
	if err != nil {
		t.Fatalf("trip get request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("trip get: %s", resp.ToString())
	}
	view, err := tripsClient.DecodeTrip(resp)
	if err != nil {
		t.Fatalf("decode trip: %v", err)
	}
	return view.Trip
}

func fetchShipment(t *testing.T, id string) *model.Shipment {
	t.Helper()
	resp, err := shipmentsClient.GetByID(id)
	if err != nil {
		t.Fatalf("shipment get request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("shipment get: %s", resp.ToString())
	}
	shipment, err := shipmentsClient.DecodeShipment(resp)
	if err != nil {
		t.Fatalf("decode shipment: %v", err)
	}
	return shipment
}

// --- Tests ---

func TestFullDeliveryLifecycle(t *testing.T) {
	traveler := randomPhone()
	sender := randomPhone()

	trip := createTrip(t, traveler)
	shipment := createShipment(t, sender, 4)
	created := createTransaction(t, shipment.ID, trip.ID)

	if created.Transaction.Status != model.TransactionStatusPending {
		t.Fatalf("expected PENDING, got %s", created.Transaction.Status)
	}
	if len(created.SecurityCode) != 6 {
		t.Fatalf("expected a 6 digit security code, got %q", created.SecurityCode)
	}

	txID := created.Transaction.ID

	if resp := transition(t, txID, "confirm", traveler, nil); resp.StatusCode != 200 {
		t.Fatalf("confirm: %s", resp.ToString())
	}
	if got := fetchShipment(t, shipment.ID).Status; got != model.ShipmentStatusMatched {
		t.Fatalf("expected shipment MATCHED after confirm, got %s", got)
	}
	if got := fetchTrip(t, trip.ID).Status; got != model.TripStatusPartiallyBooked {
		t.Fatalf("expected trip PARTIALLY_BOOKED after confirm, got %s", got)
	}

	if resp := transition(t, txID, "pickup", traveler, nil); resp.StatusCode != 200 {
		t.Fatalf("pickup: %s", resp.ToString())
	}

	wrongCode := transition(t, txID, "deliver", sender, map[string]any{"security_code": "000000"})
	if wrongCode.StatusCode != 403 {
		t.Fatalf("expected 403 for a wrong security code, got %s", wrongCode.ToString())
	}

	deliver := transition(t, txID, "deliver", sender, map[string]any{"security_code": created.SecurityCode})
	if deliver.StatusCode != 200 {
		t.Fatalf("deliver: %s", deliver.ToString())
	}
	if got := fetchShipment(t, shipment.ID).Status; got != model.ShipmentStatusDelivered {
		t.Fatalf("expected shipment DELIVERED, got %s", got)
	}

	complete := transition(t, txID, "complete", traveler, nil)
	if complete.StatusCode != 200 {
		t.Fatalf("complete: %s", complete.ToString())
	}

	resp, err := transactionsClient.GetByID(txID)
	if err != nil {
		t.Fatalf("transaction get request failed: %v", err)
	}
	final, err := transactionsClient.DecodeTransaction(resp)
	if err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if final.Status != model.TransactionStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", final.Status)
	}
	if final.PaymentCapturedAt == nil {
		t.Fatal("expected payment_captured_at to be set after completion")
	}
	if final.SecurityCode != "" {
		t.Fatal("security code must never appear in API responses")
	}
}

func TestConfirmRejectedForWrongActor(t *testing.T) {
	traveler := randomPhone()
	sender := randomPhone()

	trip := createTrip(t, traveler)
	shipment := createShipment(t, sender, 3)
	created := createTransaction(t, shipment.ID, trip.ID)

	resp := transition(t, created.Transaction.ID, "confirm", sender, nil)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403 when the sender confirms, got %s", resp.ToString())
	}
}

func TestCapacityExhaustionMarksTripFullyBooked(t *testing.T) {
	traveler := randomPhone()

	trip := createTrip(t, traveler)

	// max_packages is 2, so two confirmed matches fill the trip.
	for i := 0; i < 2; i++ {
		shipment := createShipment(t, randomPhone(), 3)
		created := createTransaction(t, shipment.ID, trip.ID)
		if resp := transition(t, created.Transaction.ID, "confirm", traveler, nil); resp.StatusCode != 200 {
			t.Fatalf("confirm %d: %s", i, resp.ToString())
		}
	}

	if got := fetchTrip(t, trip.ID).Status; got != model.TripStatusFullyBooked {
		t.Fatalf("expected trip FULLY_BOOKED, got %s", got)
	}

	extra := createShipment(t, randomPhone(), 1)
	resp, err := transactionsClient.Create(map[string]any{
		"shipment_id": extra.ID,
		"trip_id":     trip.ID,
	})
	if err != nil {
		t.Fatalf("transaction create request failed: %v", err)
	}
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409 matching against a fully booked trip, got %s", resp.ToString())
	}
}

func TestCancelConfirmedMatchFreesCapacity(t *testing.T) {
	traveler := randomPhone()
	sender := randomPhone()

	trip := createTrip(t, traveler)
	shipment := createShipment(t, sender, 5)
	created := createTransaction(t, shipment.ID, trip.ID)
	txID := created.Transaction.ID

	if resp := transition(t, txID, "confirm", traveler, nil); resp.StatusCode != 200 {
		t.Fatalf("confirm: %s", resp.ToString())
	}
	if resp := transition(t, txID, "cancel", sender, nil); resp.StatusCode != 200 {
		t.Fatalf("cancel: %s", resp.ToString())
	}

	if got := fetchTrip(t, trip.ID).Status; got != model.TripStatusAvailable {
		t.Fatalf("expected trip back to AVAILABLE after cancel, got %s", got)
	}
	if got := fetchShipment(t, shipment.ID).Status; got != model.ShipmentStatusPendingMatch {
		t.Fatalf("expected shipment back to PENDING_MATCH after cancel, got %s", got)
	}

	resp, err := transactionsClient.GetByID(txID)
	if err != nil {
		t.Fatalf("transaction get request failed: %v", err)
	}
	tx, err := transactionsClient.DecodeTransaction(resp)
	if err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if tx.Status != model.TransactionStatusCanceled {
		t.Fatalf("expected CANCELED, got %s", tx.Status)
	}
}
