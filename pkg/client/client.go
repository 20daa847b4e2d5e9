package client

import (
	"context"
	"time"

	"carrygo/pkg/logger"
)

// Client bundles every external collaborator a service may need. Each service
// sets only the collaborators it actually uses; the rest stay nil.
type Client struct {
	Mongo        *MongoClient
	Trips        *TripClient
	Shipments    *ShipmentClient
	Transactions *TransactionClient
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	c.Mongo = NewMongoClient(log, mongoURI, mongoConnTimeout)
}

func (c *Client) SetServiceClients(tripsBaseURL, shipmentsBaseURL, transactionsBaseURL string) {
	c.Trips = NewTripClient(tripsBaseURL)
	c.Shipments = NewShipmentClient(shipmentsBaseURL)
	c.Transactions = NewTransactionClient(transactionsBaseURL)
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Mongo.Client.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect MongoDB client", "error", err)
			return
		}
		log.Info("MongoDB client disconnected")
	}
}
