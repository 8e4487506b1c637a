package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxJSONBody bounds JSON request bodies. Folder requests are tiny; icons may embed a small image.
const maxJSONBody = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// An empty body decodes to the zero value so optional-only requests still parse.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
