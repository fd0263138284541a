package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/mtaanigas/fulfillment-backend/api/responses"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	pkgredis "github.com/mtaanigas/fulfillment-backend/pkg/redis"
)

const idempotencyKeyHeader = "Idempotency-Key"

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
	ttl     time.Duration
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/api/v1/orders"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPatch, matcher: matchPrefixSuffix("/api/v1/orders/", "/cancel"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/agent-orders/", "/accept"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/api/v1/payments/initiate"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefix("/api/v1/admin/payments/"), ttl: defaultIdempotencyTTL},
}

const (
	idempotencyReplayHeader = "Idempotent-Replayed"
	// inFlightTTL bounds how long a crashed handler can hold a key.
	inFlightTTL = 2 * time.Minute
)

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
	InFlight    bool              `json:"in_flight,omitempty"`
}

// Idempotency replays the first completed response for a repeated
// Idempotency-Key on the mutating routes listed in idempotencyRules.
// A key is reserved before the handler runs so that concurrent duplicates
// (two taps on "accept") cannot both reach the service layer.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := requestTTL(r)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			// The key is opt-in; requests without one are processed normally.
			idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)

			reserved, err := reserve(r.Context(), store, key, requestHash)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !reserved {
				replayExisting(w, r, store, key, requestHash, logg)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			// Drop the reservation first; server failures stay retryable.
			if delErr := store.Del(r.Context(), key); delErr != nil {
				logError(r.Context(), logg, "release idempotency reservation", delErr)
			}
			if status >= http.StatusInternalServerError {
				return
			}

			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(r.Context(), logg, "marshal idempotency record", marshalErr)
				return
			}
			if _, setErr := store.SetNX(r.Context(), key, string(payload), ttl); setErr != nil {
				logError(r.Context(), logg, "persist idempotency record", setErr)
			}
		})
	}
}

func reserve(ctx context.Context, store pkgredis.IdempotencyStore, key, requestHash string) (bool, error) {
	marker, err := json.Marshal(idempotencyRecord{RequestHash: requestHash, InFlight: true})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency reservation")
	}
	ok, err := store.SetNX(ctx, key, string(marker), inFlightTTL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
	}
	return ok, nil
}

func replayExisting(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, requestHash string, logg *logger.Logger) {
	stored, err := store.Get(r.Context(), key)
	if errors.Is(err, redis.Nil) {
		// Reservation released between SetNX and Get after a 5xx.
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Previous request with this idempotency key failed; retry"))
		return
	}
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}
	record, err := decodeRecord(stored)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != requestHash:
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency key reused with a different request body"))
	case record.InFlight:
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "A request with this idempotency key is still in progress"))
	default:
		writeStoredResponse(w, record)
	}
}

func buildScope(r *http.Request) string {
	parts := []string{
		UserIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if record == nil {
		return
	}
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set(idempotencyReplayHeader, "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// requestTTL matches the resolved chi pattern first and the raw path second,
// since middleware mounted with Use runs before the pattern is complete.
func requestTTL(r *http.Request) (time.Duration, bool) {
	if ttl, ok := routeTTL(r.Method, routePattern(r)); ok {
		return ttl, true
	}
	return routeTTL(r.Method, r.URL.Path)
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	if pattern == "" {
		return 0, false
	}
	for _, rule := range idempotencyRules {
		if rule.method != method {
			continue
		}
		if rule.matcher(pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return strings.TrimSuffix(pattern, "/") == path
	}
}

func matchPrefix(prefix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix)
	}
}

func matchPrefixSuffix(prefix, suffix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
