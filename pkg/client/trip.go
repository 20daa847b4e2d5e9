package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"carrygo/pkg/capacity"
)

type TripClient struct {
	httpClient *HttpClient
}

func NewTripClient(baseURL string) *TripClient {
	return &TripClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *TripClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/trips", body)
}

func (c *TripClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/trips?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *TripClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/trips/id/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *TripClient) Update(id string, body any) (*Response, error) {
	path := "/api/v1/trips/id/" + url.PathEscape(id)
	return c.httpClient.PATCH(path, body)
}

func (c *TripClient) Cancel(id string) (*Response, error) {
	path := "/api/v1/trips/id/" + url.PathEscape(id) + "/cancel"
	return c.httpClient.POST(path, nil)
}

// SearchCompatible finds trips that can still accept a shipment of the given
// weight along the route.
func (c *TripClient) SearchCompatible(weight float64, departureCity, arrivalCity string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("weight", fmt.Sprintf("%g", weight))

	if departureCity != "" {
		q.Set("departure_city", departureCity)
	}
	if arrivalCity != "" {
		q.Set("arrival_city", arrivalCity)
	}

	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/trips/compatible?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *TripClient) DecodeTrip(resp *Response) (*capacity.TripView, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode trip wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var trip capacity.TripView
	if err := json.Unmarshal(wrapper.Data, &trip); err != nil {
		return nil, fmt.Errorf("could not decode trip json:\n%+v\n%s", resp.ToString(), err)
	}

	return &trip, nil
}

func (c *TripClient) DecodeTrips(resp *Response) ([]*capacity.TripView, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var trips []*capacity.TripView
	if err := json.Unmarshal(wrapper.Data, &trips); err != nil {
		return nil, nil, fmt.Errorf("could not decode trip list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return trips, metadata, nil
}
