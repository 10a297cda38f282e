package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/goliatone/go-incomeform/pkg/census"
)

const (
	keyPredictedIncome = "predicted_income"
	keyError           = "error"
)

// Predictor submits one record and reports the outcome.
type Predictor interface {
	Predict(ctx context.Context, record census.Record) Result
}

// Client posts census records to the prediction endpoint.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	rest       *resty.Client
}

var _ Predictor = (*Client)(nil)

// New constructs a Client. Without options it targets DefaultEndpoint with no
// timeout.
func New(options ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}

	if c.httpClient != nil {
		// resty sets Timeout on the client it wraps; keep the caller's intact.
		hc := *c.httpClient
		c.rest = resty.NewWithClient(&hc)
	} else {
		c.rest = resty.New()
	}
	c.rest.
		SetTimeout(c.timeout).
		SetRetryCount(0).
		SetLogger(c.logger.Sugar()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return c
}

// Endpoint returns the configured prediction URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Predict sends record as a JSON object and classifies the reply. Transport
// failures and undecodable bodies become KindTransportError; the HTTP status
// does not affect classification.
func (c *Client) Predict(ctx context.Context, record census.Record) Result {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(record.Payload()).
		Post(c.endpoint)
	if err != nil {
		return TransportError(err)
	}

	result := Classify(resp.Body())
	result.Status = resp.StatusCode()
	return result
}

// Classify maps a response body onto a Result.
func Classify(body []byte) Result {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return TransportError(fmt.Errorf("predict: decode response: %w", err))
	}

	var object map[string]json.RawMessage
	if _, ok := decoded.(map[string]any); !ok {
		return APIError(UnknownError)
	}
	if err := json.Unmarshal(body, &object); err != nil {
		return TransportError(fmt.Errorf("predict: decode response: %w", err))
	}

	if raw, ok := object[keyPredictedIncome]; ok {
		return Success(jsonText(raw))
	}
	if raw, ok := object[keyError]; ok && !isNull(raw) {
		return APIError(jsonText(raw))
	}
	return APIError(UnknownError)
}

// jsonText returns strings unquoted and any other value, null included, as
// compact JSON.
func jsonText(raw json.RawMessage) string {
	if isNull(raw) {
		return "null"
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
