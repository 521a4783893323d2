package validators

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/ezshop-backend/pkg/dates"
	pkgerrors "github.com/angelmondragon/ezshop-backend/pkg/errors"
)

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// QueryString returns the trimmed query parameter capped at maxLen.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}

// OptionalDate parses an optional YYYY-MM-DD body field.
func OptionalDate(field, value string) (*time.Time, error) {
	parsed, err := dates.ParseOptional(value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{field: "must be a date formatted " + dates.Layout})
	}
	return parsed, nil
}
