package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
)

// ParseUUIDParam reads a chi URL parameter as a UUID. label names the
// parameter in error messages, e.g. "order id".
func ParseUUIDParam(r *http.Request, key, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}

// ParseUUID validates a UUID carried in a request body.
func ParseUUID(raw, label string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}
