// Package proxy forwards mentorship tickets to the ticketing table API with server-held credentials.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"alumni_connect/internal/common"
	"alumni_connect/internal/platform/metrics"
)

const MsgProxyFailure = "Proxy failure"

const maxBodyBytes = 1 << 20

type Forwarder struct {
	url        string
	username   string
	password   string
	httpClient *http.Client
}

func NewForwarder(url, username, password string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		url:        url,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward posts body once and returns the upstream status and JSON document. A non-JSON
// answer is treated like a transport failure.
func (f *Forwarder) Forward(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build ticketing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(f.username, f.password)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("ticketing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read ticketing response: %w", err)
	}
	if !json.Valid(data) {
		return 0, nil, fmt.Errorf("ticketing returned non-JSON body with status %d", resp.StatusCode)
	}
	return resp.StatusCode, data, nil
}

// HandleMentorship relays POST /mentorship.
func (f *Forwarder) HandleMentorship(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	status, data, err := f.Forward(r.Context(), body)
	metrics.OutboundRequests.WithLabelValues("ticketing", metrics.Outcome(err)).Inc()
	if err != nil {
		log.Printf("ERROR: Proxy error: %v", err)
		common.RespondWithError(w, http.StatusInternalServerError, MsgProxyFailure)
		return
	}
	common.RespondWithRawJSON(w, status, data)
}
