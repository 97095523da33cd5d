package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
)

// HTTPError captures a non-2xx backend response.
type HTTPError struct {
	Status  int
	Method  string
	URLPath string
	Body    []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend %s %s returned %d", e.Method, e.URLPath, e.Status)
}

func (e *HTTPError) StatusCode() int { return e.Status }

func (e *HTTPError) Path() string { return e.URLPath }

// detailMessage extracts the backend's "detail"/"error"/"message" field when present.
func (e *HTTPError) detailMessage() string {
	var body map[string]any
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		if v, ok := body[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (e *HTTPError) details() any {
	var body any
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return nil
	}
	return body
}

func mapStatus(e *HTTPError) error {
	msg := e.detailMessage()
	switch e.Status {
	case http.StatusUnauthorized:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, e, orDefault(msg, "session expired, please sign in again"))
	case http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, e, orDefault(msg, "not allowed"))
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, e, orDefault(msg, "resource not found"))
	case http.StatusConflict:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, e, orDefault(msg, "request conflicts with current state"))
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, e, orDefault(msg, "request rejected by backend")).WithDetails(e.details())
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, e, orDefault(msg, "backend request failed"))
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
