package contract

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"
)

// Transport validates outgoing requests before handing them to the next
// round tripper. Bodiless and JSON requests are checked; multipart uploads
// pass through. A rejected request is answered locally with 422 and a
// "detail" message so callers treat it as a client error.
type Transport struct {
	validator *Validator
	next      http.RoundTripper
	logger    *zap.Logger
}

// NewTransport wraps next (http.DefaultTransport when nil).
func NewTransport(v *Validator, next http.RoundTripper, logger *zap.Logger) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{validator: v, next: next, logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	probe, ok, err := probeFor(req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return t.next.RoundTrip(req)
	}
	if err := t.validator.ValidateRequest(req.Context(), probe); err != nil {
		t.logger.Warn("request rejected by contract",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return rejection(req, err), nil
	}
	return t.next.RoundTrip(req)
}

// probeFor returns a copy of req whose body the validator may consume.
func probeFor(req *http.Request) (*http.Request, bool, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req.Clone(req.Context()), true, nil
	}
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" || req.GetBody == nil {
		return nil, false, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false, err
	}
	probe := req.Clone(req.Context())
	probe.Body = body
	return probe, true, nil
}

func rejection(req *http.Request, cause error) *http.Response {
	payload, _ := json.Marshal(map[string]string{"detail": cause.Error()})
	if req.Body != nil {
		_ = req.Body.Close()
	}
	return &http.Response{
		Status:        "422 Unprocessable Entity",
		StatusCode:    http.StatusUnprocessableEntity,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(payload)),
		ContentLength: int64(len(payload)),
		Request:       req,
	}
}
