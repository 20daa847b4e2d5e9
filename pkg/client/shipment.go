package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"carrygo/pkg/model"
)

type ShipmentClient struct {
	httpClient *HttpClient
}

func NewShipmentClient(baseURL string) *ShipmentClient {
	return &ShipmentClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *ShipmentClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/shipments", body)
}

func (c *ShipmentClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/shipments?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *ShipmentClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/shipments/id/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *ShipmentClient) Update(id string, body any) (*Response, error) {
	path := "/api/v1/shipments/id/" + url.PathEscape(id)
	return c.httpClient.PATCH(path, body)
}

func (c *ShipmentClient) Search(departureCity, arrivalCity string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if departureCity != "" {
		q.Set("departure_city", departureCity)
	}
	if arrivalCity != "" {
		q.Set("arrival_city", arrivalCity)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/shipments/search?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *ShipmentClient) DecodeShipment(resp *Response) (*model.Shipment, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode shipment wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var shipment model.Shipment
	if err := json.Unmarshal(wrapper.Data, &shipment); err != nil {
		return nil, fmt.Errorf("could not decode shipment json:\n%+v\n%s", resp.ToString(), err)
	}

	return &shipment, nil
}

func (c *ShipmentClient) DecodeShipments(resp *Response) ([]*model.Shipment, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var shipments []*model.Shipment
	if err := json.Unmarshal(wrapper.Data, &shipments); err != nil {
		return nil, nil, fmt.Errorf("could not decode shipment list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return shipments, metadata, nil
}
