package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/types"
)

var successPrefix = []byte(`{"success":true`)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

// WriteSuccessStatus writes data with "success":true merged at the top level
// when data encodes to a JSON object, or wrapped under "data" otherwise.
func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil || !isJSONObject(body) {
		writeJSON(w, status, types.SuccessEnvelope{Success: true, Data: data})
		return
	}
	writeRaw(w, status, mergeSuccess(body))
}

func mergeSuccess(object []byte) []byte {
	inner := bytes.TrimSpace(object)
	inner = bytes.TrimSpace(inner[1 : len(inner)-1])
	var buf bytes.Buffer
	buf.Grow(len(successPrefix) + len(inner) + 3)
	buf.Write(successPrefix)
	if len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

func isJSONObject(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) >= 2 && trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}'
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodePrecondition,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeStateConflict,
		pkgerrors.CodeIdempotency,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	var payload any = types.ErrorEnvelope{Error: msg, Code: string(typed.Code())}
	if meta.DetailsAllowed && typed.Details() != nil {
		payload = withDetails(msg, typed.Code(), typed.Details())
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)

		fields := map[string]any{
			"error":         dump.TopMessage,
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_detail":     dump.PGDetail,
			"pg_message":    dump.PGMessage,
			"pg_table":      dump.PGTable,
			"pg_column":     dump.PGColumn,
			"pg_constraint": dump.PGConstraint,
		}

		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func withDetails(msg string, code pkgerrors.Code, details any) map[string]any {
	payload := map[string]any{}
	if extra, ok := details.(map[string]any); ok {
		for k, v := range extra {
			payload[k] = v
		}
	} else {
		payload["details"] = details
	}
	payload["success"] = false
	payload["error"] = msg
	payload["code"] = string(code)
	return payload
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Printf(`{"level":"error","msg":"failed to write response","err":"%v"}`, err)
	}
}
