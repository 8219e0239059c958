package resolve

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingKey marks an item that carries no stable key and cannot be
	// correlated or stored.
	ErrMissingKey = errors.New("missing key")
	// ErrMissingTitle marks an item with no cached record and no title to
	// resolve from.
	ErrMissingTitle = errors.New("title missing")
	// ErrNotFound marks an exhausted fallback chain.
	ErrNotFound = errors.New("not found")
	// ErrProvider marks a transport or decode failure talking to the rating
	// provider.
	ErrProvider = errors.New("provider error")
	// ErrStore marks a failed record store round trip.
	ErrStore = errors.New("store error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrProvider
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Reason maps a resolution error to the short reason string reported in
// batch responses.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingTitle):
		return "title missing"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrProvider):
		return "provider error"
	case errors.Is(err, ErrStore):
		return "store error"
	default:
		return err.Error()
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "resolution failure"
	}
	return strings.Join(parts, ": ")
}
