package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/ports"
)

// RelayClient is a ports.Relay that goes through a remote /ask endpoint,
// the way the browser UI of the original service did.
type RelayClient struct {
	baseURL string
	http    *http.Client
}

var _ ports.Relay = (*RelayClient)(nil)

// NewRelayClient targets the server at baseURL (e.g. "http://localhost:5001").
// A nil client means http.DefaultClient.
func NewRelayClient(baseURL string, hc *http.Client) *RelayClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &RelayClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Ask posts prompt to /ask. Non-2xx answers become *domain.RelayError.
func (c *RelayClient) Ask(ctx context.Context, prompt string) (*domain.Payload, error) {
	body, err := json.Marshal(AskRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("relay response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		relayErr := &domain.RelayError{Status: resp.StatusCode}
		var env domain.ErrorEnvelope
		if json.Unmarshal(data, &env) == nil {
			relayErr.Code = env.Error.Code
			relayErr.Message = env.Error.Message
			relayErr.Reason = env.Error.Status
		}
		if relayErr.Message == domain.ErrRelayUnconfigured.Error() {
			return nil, fmt.Errorf("%w: %w", domain.ErrRelayUnconfigured, relayErr)
		}
		return nil, relayErr
	}
	return domain.DecodePayload(data)
}
