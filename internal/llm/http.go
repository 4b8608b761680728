package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	// ErrUpstreamStatus is returned when a provider answers with a 4xx/5xx status.
	// It counts as a provider error, so a chain that fails only this way
	// ends in TroubleReply rather than OfflineReply.
	ErrUpstreamStatus = errors.New("provider returned an error status")
	// ErrMalformedReply is returned when a provider reply is not the JSON shape it documents.
	ErrMalformedReply = errors.New("provider reply is malformed")
)

// postJSON sends body as JSON and returns the parsed reply document.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any) (gjson.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return gjson.Result{}, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, ErrMalformedReply
	}
	return gjson.ParseBytes(raw), nil
}
