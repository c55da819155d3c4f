package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingInfo struct {
	ID                uuid.UUID       `json:"id"`
	SellerID          uuid.UUID       `json:"sellerId"`
	Title             string          `json:"title"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Unit              string          `json:"unit"`
	QuantityAvailable int64           `json:"quantityAvailable"`
	Status            string          `json:"status"`
}

// Available reports whether the listing can cover an order of qty units.
func (l *ListingInfo) Available(qty int64) bool {
	return l.Status == "ACTIVE" && l.QuantityAvailable >= qty
}

type ListingClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewListingClient(baseURL string, timeout time.Duration) *ListingClient {
	return &ListingClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ListingClient) GetListingById(ctx context.Context, id uuid.UUID) (*ListingInfo, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/listings/%s", c.baseURL, id), nil)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketplace service returned status %d", resp.StatusCode)
	}

	var l ListingInfo
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}
