package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DefaultMaxJSONBytes bounds JSON request bodies unless a caller asks for more.
const DefaultMaxJSONBytes = 1 << 20

// ErrBodyTooLarge is returned when a request body exceeds its limit.
var ErrBodyTooLarge = errors.New("request body too large")

// ParseJSON decodes a JSON body of at most DefaultMaxJSONBytes into dest.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	return ParseJSONLimit(w, r, dest, DefaultMaxJSONBytes)
}

// ParseJSONLimit decodes a JSON body of at most limit bytes into dest.
// Exceeding the limit yields ErrBodyTooLarge.
func ParseJSONLimit(w http.ResponseWriter, r *http.Request, dest interface{}, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
