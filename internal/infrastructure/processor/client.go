// Package processor is the outbound HTTP adapter for the external card
// processor.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/config"
)

type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.ProcessorConfig) application.ProcessorClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (c *HTTPClient) CreateCharge(ctx context.Context, req application.ChargeRequest) (*application.ChargeResponse, error) {
	url := fmt.Sprintf("%s/v1/charges", c.baseURL)
	body := chargeRequestBody{
		Amount:    req.Amount,
		Currency:  req.Currency,
		MethodRef: req.MethodRef,
		Metadata:  req.Metadata,
	}
	return sendRequest[chargeRequestBody, application.ChargeResponse](c, ctx, http.MethodPost, url, &body)
}

func (c *HTTPClient) CreateSubscription(ctx context.Context, req application.SubscriptionRequest) (*application.SubscriptionResponse, error) {
	url := fmt.Sprintf("%s/v1/subscriptions", c.baseURL)
	body := subscriptionRequestBody{
		CustomerRef: req.CustomerRef,
		PlanRef:     req.PlanRef,
		MethodRef:   req.MethodRef,
		Metadata:    req.Metadata,
	}
	return sendRequest[subscriptionRequestBody, application.SubscriptionResponse](c, ctx, http.MethodPost, url, &body)
}

func (c *HTTPClient) Refund(ctx context.Context, req application.RefundRequest) (*application.RefundResponse, error) {
	url := fmt.Sprintf("%s/v1/refunds", c.baseURL)
	body := refundRequestBody{
		ChargeRef: req.ChargeRef,
		Amount:    req.Amount,
		Currency:  req.Currency,
	}
	return sendRequest[refundRequestBody, application.RefundResponse](c, ctx, http.MethodPost, url, &body)
}

func (c *HTTPClient) CancelSubscription(ctx context.Context, subscriptionRef string) error {
	url := fmt.Sprintf("%s/v1/subscriptions/%s", c.baseURL, subscriptionRef)
	_, err := sendRequest[any, struct{}](c, ctx, http.MethodDelete, url, nil)
	return err
}

func sendRequest[Req any, Resp any](c *HTTPClient, ctx context.Context, method, url string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponseBody
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("processor returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, &ProcessorError{
			Code:       errResp.Err,
			Message:    errResp.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var out Resp
	if resp.StatusCode == http.StatusNoContent {
		return &out, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &out, nil
}
