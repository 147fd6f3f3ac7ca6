package medusa

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrNotFound = errors.New("medusa: not found")
	ErrConflict = errors.New("medusa: conflict")
)

// APIError is a non-2xx response from Medusa.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("medusa: status %d", e.Status)
	}
	return fmt.Sprintf("medusa: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound || e.Type == "not_found"
	case ErrConflict:
		return e.Status == http.StatusConflict || e.Type == "duplicate_error"
	}
	return false
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	if !gjson.ValidBytes(body) {
		e.Message = strings.TrimSpace(string(body))
		return e
	}
	res := gjson.GetManyBytes(body, "type", "message")
	e.Type = res[0].String()
	e.Message = res[1].String()
	return e
}
