package beeminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// APIError is a non-2xx response from the API. Body is kept verbatim so the
// CLI can surface the server's validation messages.
type APIError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *APIError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "HTTP error"
	}
	return fmt.Sprintf("beeminder API error (%d %s): %s", e.StatusCode, reason, strings.TrimSpace(e.Body))
}

// IsAPIError reports whether err is (or wraps) an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// FormatAPIError renders an APIError for terminal output. The API reports
// validation failures as {"errors": {"field": ["message", ...]}}; those are
// flattened into one line per message. Anything else falls back to the raw
// body.
func FormatAPIError(e *APIError) string {
	reason := e.Reason
	if reason == "" {
		reason = "HTTP error"
	}
	header := fmt.Sprintf("Beeminder API error (%d %s):", e.StatusCode, reason)

	var payload struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil && len(payload.Errors) > 0 {
		keys := make([]string, 0, len(payload.Errors))
		for key := range payload.Errors {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var lines []string
		for _, key := range keys {
			raw := payload.Errors[key]
			var list []string
			if err := json.Unmarshal(raw, &list); err == nil {
				for _, msg := range list {
					lines = append(lines, fmt.Sprintf("  - %s: %s", key, strings.ReplaceAll(msg, "\n", " ")))
				}
				continue
			}
			var single string
			if err := json.Unmarshal(raw, &single); err == nil {
				lines = append(lines, fmt.Sprintf("  - %s: %s", key, strings.ReplaceAll(single, "\n", " ")))
				continue
			}
			lines = append(lines, fmt.Sprintf("  - %s: %s", key, string(raw)))
		}
		return header + "\n" + strings.Join(lines, "\n")
	}

	if body := strings.TrimSpace(e.Body); body != "" {
		return header + "\n" + body
	}
	return header
}
