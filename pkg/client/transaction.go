package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"carrygo/pkg/model"
)

type TransactionClient struct {
	httpClient *HttpClient
}

func NewTransactionClient(baseURL string) *TransactionClient {
	return &TransactionClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *TransactionClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/transactions", body)
}

func (c *TransactionClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/transactions/id/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *TransactionClient) GetByTrip(tripID string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("trip_id", tripID)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET("/api/v1/transactions/search?" + q.Encode())
}

func (c *TransactionClient) Confirm(id string, headers map[string]string) (*Response, error) {
	path := "/api/v1/transactions/id/" + url.PathEscape(id) + "/confirm"
	return c.httpClient.POSTWithHeaders(path, nil, headers)
}

func (c *TransactionClient) DecodeTransaction(resp *Response) (*model.Transaction, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode transaction wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var tx model.Transaction
	if err := json.Unmarshal(wrapper.Data, &tx); err != nil {
		return nil, fmt.Errorf("could not decode transaction json:\n%+v\n%s", resp.ToString(), err)
	}

	return &tx, nil
}
