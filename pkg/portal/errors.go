package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"mime"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// TransportMessage is the user-facing text for requests that never produced
// an HTTP response.
const TransportMessage = "Failed to submit. Please check your connection and try again."

const decodeMessage = "Unexpected response from server"

// Kind classifies a failed call. Every non-2xx status below 500 is
// KindClient.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindClient
	KindServer
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("unknown (%d)", int(k))
	}
}

// Error is returned by every Client method. Message is safe to show to the
// user as-is.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("portal: %s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("portal: %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a failed call may succeed when repeated. Only
// transport failures and 5xx responses qualify.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var perr *Error
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Kind == KindTransport || perr.Kind == KindServer
}

// Message extracts the user-facing text from err, falling back to err.Error()
// for values that did not come from this package.
func Message(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.StatusCode
	}
	return 0
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message json.RawMessage `json:"message"`
}

type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseErrorMessage turns a non-2xx body into the text surfaced to the user:
// the JSON detail (string or validation list), then the JSON message, then the
// plain body, defaulting to "HTTP {status}". HTML pages are reduced to their
// text.
func parseErrorMessage(status int, contentType string, body []byte) string {
	fallback := fmt.Sprintf("HTTP %d", status)
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}

	var payload errorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		if json.Valid(body) {
			return fallback
		}
		if isHTML(contentType) {
			if text := pageText(trimmed); text != "" {
				return text
			}
			return fallback
		}
		return trimmed
	}
	if msg := detailMessage(payload.Detail); msg != "" {
		return msg
	}
	var message string
	if err := json.Unmarshal(payload.Message, &message); err == nil && strings.TrimSpace(message) != "" {
		return strings.TrimSpace(message)
	}
	return fallback
}

var (
	pagePolicyOnce sync.Once
	pagePolicy     *bluemonday.Policy
)

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/html"
}

// pageText strips an HTML error page, such as a proxy's 502 page, down to its
// visible text on one line.
func pageText(page string) string {
	pagePolicyOnce.Do(func() {
		pagePolicy = bluemonday.StrictPolicy()
		pagePolicy.AddSpaceWhenStrippingTag(true)
	})
	text := html.UnescapeString(pagePolicy.Sanitize(page))
	return strings.Join(strings.Fields(text), " ")
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []validationItem
	if err := json.Unmarshal(raw, &items); err == nil {
		messages := make([]string, 0, len(items))
		seen := make(map[string]struct{}, len(items))
		for _, item := range items {
			msg := strings.TrimSpace(item.Msg)
			if msg == "" {
				continue
			}
			if field := locationPath(item.Loc); field != "" {
				msg = field + ": " + msg
			}
			if _, ok := seen[msg]; ok {
				continue
			}
			seen[msg] = struct{}{}
			messages = append(messages, msg)
		}
		return strings.Join(messages, "; ")
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

// locationPath renders a validation loc such as ["body", "machines", 0,
// "modele"] as "machines.0.modele". Leading request-part wrappers are dropped.
func locationPath(loc []any) string {
	segments := make([]string, 0, len(loc))
	for _, part := range loc {
		switch v := part.(type) {
		case string:
			segments = append(segments, v)
		case float64:
			segments = append(segments, fmt.Sprintf("%d", int(v)))
		}
	}
	for len(segments) > 0 {
		switch strings.ToLower(segments[0]) {
		case "body", "query", "path", "header", "form":
			segments = segments[1:]
			continue
		}
		break
	}
	return strings.Join(segments, ".")
}
