package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

const maxErrorBody = 64 * 1024

type exchangeKey struct{}

// exchange records the last HTTP response seen for one Generate call.
type exchange struct {
	status     int
	retryAfter string
	body       []byte
}

func withExchange(ctx context.Context) (context.Context, *exchange) {
	ex := &exchange{}
	return context.WithValue(ctx, exchangeKey{}, ex), ex
}

// recorder keeps the status and error body of each response so they
// survive the chat client's own error handling. The body is handed back
// unchanged to the caller.
type recorder struct {
	next http.RoundTripper
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	ex, ok := req.Context().Value(exchangeKey{}).(*exchange)
	if !ok {
		return resp, nil
	}

	ex.status = resp.StatusCode
	ex.retryAfter = resp.Header.Get("Retry-After")
	ex.body = nil
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	ex.body = raw
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}

type errorEnvelope struct {
	Error struct {
		Message          string `json:"message"`
		Type             string `json:"type"`
		Code             string `json:"code"`
		FailedGeneration string `json:"failed_generation"`
	} `json:"error"`
}

func parseEnvelope(raw []byte) errorEnvelope {
	var env errorEnvelope
	_ = json.Unmarshal(raw, &env)
	return env
}
