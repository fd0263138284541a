package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Location is a free-text delivery or service area with its ward token
// resolved once when the value enters the system.
type Location struct {
	Raw  string `json:"raw"`
	Ward string `json:"ward"`
}

type legacyLocation struct {
	Ward    string `json:"ward"`
	Area    string `json:"area"`
	Address string `json:"address"`
}

// ParseLocation accepts either plain text ("Kasarani, Nairobi") or the legacy
// JSON text form ({"ward":"Kasarani",...}).
func ParseLocation(value string) Location {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Location{}
	}
	if strings.HasPrefix(trimmed, "{") {
		var legacy legacyLocation
		if err := json.Unmarshal([]byte(trimmed), &legacy); err == nil {
			raw := strings.TrimSpace(legacy.Ward)
			if raw == "" {
				raw = strings.TrimSpace(legacy.Address)
			}
			if area := strings.TrimSpace(legacy.Area); area != "" && raw != "" {
				raw = raw + ", " + area
			}
			if raw != "" {
				return Location{Raw: raw, Ward: ExtractWard(raw)}
			}
		}
	}
	return Location{Raw: trimmed, Ward: ExtractWard(trimmed)}
}

// ExtractWard returns the text before the first comma, trimmed and lowercased.
func ExtractWard(location string) string {
	ward := location
	if idx := strings.Index(location, ","); idx >= 0 {
		ward = location[:idx]
	}
	return strings.ToLower(strings.TrimSpace(ward))
}

// IsZero reports whether no location text was provided.
func (l Location) IsZero() bool {
	return strings.TrimSpace(l.Raw) == ""
}

func (l Location) String() string {
	return l.Raw
}

// Value stores the raw text; the ward is derived again on scan.
func (l Location) Value() (driver.Value, error) {
	if l.IsZero() {
		return nil, nil
	}
	return l.Raw, nil
}

// Scan decodes a text column, resolving legacy JSON text.
func (l *Location) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = Location{}
	case string:
		*l = ParseLocation(v)
	case []byte:
		*l = ParseLocation(string(v))
	default:
		return fmt.Errorf("location: unsupported scan type %T", value)
	}
	return nil
}
