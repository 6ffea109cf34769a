package transfergo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"go-currency-sync/domain"
)

const ApiUrlBase = "https://my.transfergo.com"

const defaultTimeout = 5 * time.Second

// Service wraps the TransferGo fx-rates REST API.
type Service interface {
	// FxRate quotes units of the target currency per one unit of the source
	// currency. A non-nil amount makes the lookup amount-aware; the response
	// then also carries a server-computed converted amount.
	FxRate(ctx context.Context, from, to domain.Currency, amount *decimal.Decimal) (domain.Quote, error)
}

// service fx-rates API
type service struct {
	// url base API url
	url string

	// client for HTTP requests
	client http.Client
}

// NewService constructs a valid Service against the production API.
func NewService() Service {
	return &service{
		url: ApiUrlBase,
		client: http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewCustomService constructs a Service against a custom base URL and timeout.
func NewCustomService(base string, timeout time.Duration) Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &service{
		url: base,
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// FxRate loads the current rate for a currency pair.
// Rates are live mid-market values and change continuously.
func (s *service) FxRate(ctx context.Context, from, to domain.Currency, amount *decimal.Decimal) (domain.Quote, error) {
	type Response struct {
		From     string           `json:"from"`
		To       string           `json:"to"`
		Rate     decimal.Decimal  `json:"rate"`
		ToAmount *decimal.Decimal `json:"toAmount"`
	}

	query := url.Values{}
	query.Set("from", string(from))
	query.Set("to", string(to))
	if amount != nil {
		query.Set("amount", amount.String())
	}
	endpoint := fmt.Sprintf("%v/api/fx-rates?%v", s.url, query.Encode())

	request, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return domain.Quote{}, fmt.Errorf("fx-rates status: %v", httpResponse.Status)
	}

	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("reading json: %w", err)
	}

	var response Response
	err = json.Unmarshal(bytes, &response)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("decoding json: %w", err)
	}

	if !response.Rate.IsPositive() {
		return domain.Quote{}, fmt.Errorf("bad rate value: %v", response.Rate)
	}

	return domain.Quote{Rate: response.Rate, ToAmount: response.ToAmount}, nil
}
