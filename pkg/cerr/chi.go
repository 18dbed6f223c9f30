package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/agentrep/trustledger/pkg/clog"
)

type responseReceiverKey struct{}

type responseReceiver struct {
	status   int
	response any
	err      error
}

func contextWithResponseReceiver(ctx context.Context, rr *responseReceiver) context.Context {
	return context.WithValue(ctx, responseReceiverKey{}, rr)
}

func responseReceiverFromContext(ctx context.Context) *responseReceiver {
	if rr, ok := ctx.Value(responseReceiverKey{}).(*responseReceiver); ok {
		return rr
	}
	return nil
}

func SetJSONResponse(ctx context.Context, response any) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.response = response
	}
}

// SetJSONCreated is SetJSONResponse with a 201 status.
func SetJSONCreated(ctx context.Context, response any) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.status = http.StatusCreated
		rr.response = response
	}
}

func SetJSONError(ctx context.Context, err error) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

// NewJSONResponseChiMiddleware lets handlers hand back a value or an error
// through the context and renders it once the handler returns.
func NewJSONResponseChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rr := &responseReceiver{status: http.StatusOK}
			ctx := contextWithResponseReceiver(r.Context(), rr)
			next.ServeHTTP(rw, r.WithContext(ctx))
			ExtractToHTTPResponse(ctx, rw, rr)
		})
	}
}

type httpViolation struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

type httpError struct {
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Violations []httpViolation `json:"violations,omitempty"`
}

func ExtractToHTTPResponse(ctx context.Context, rw http.ResponseWriter, rr *responseReceiver) {
	if rr.err == nil {
		if rr.response == nil {
			return
		}
		writeJSON(ctx, rw, rr.status, rr.response)
		return
	}
	if errors.Is(rr.err, context.Canceled) {
		writeJSONError(ctx, rw, NewError(Canceled, "connection closed", rr.err))
		return
	}
	var dnsErr *net.DNSError
	if errors.As(rr.err, &dnsErr) && dnsErr.Err == "operation was canceled" {
		writeJSONError(ctx, rw, NewError(Canceled, "connection closed", rr.err))
		return
	}

	clog.AddError(ctx, rr.err)
	var cErr *Error
	if errors.As(rr.err, &cErr) {
		if cErr.Stack != "" {
			clog.AddStack(ctx, cErr.Stack)
		}
		writeJSONError(ctx, rw, cErr)
		return
	}
	writeJSONError(ctx, rw, NewError(Unknown, "unknown error", rr.err))
}

func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, response any) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(response); err != nil {
		writeJSONError(ctx, rw, NewError(Internal, "server error", err))
		return
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	if _, err := rw.Write(buf.Bytes()); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
	}
}

func writeJSONError(ctx context.Context, rw http.ResponseWriter, origErr *Error) {
	body := httpError{Code: origErr.Code.String(), Message: origErr.Msg}
	for _, v := range Violations(origErr) {
		hv := httpViolation{Rule: v.GetRuleId(), Message: v.GetMessage()}
		if elems := v.GetField().GetElements(); len(elems) > 0 {
			hv.Field = elems[0].GetFieldName()
		}
		body.Violations = append(body.Violations, hv)
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(body); err != nil {
		buf = bytes.NewBufferString(`{"code":"internal","message":"server error"}`)
		origErr.Err = errors.Join(origErr.Err, err)
		clog.AddError(ctx, origErr)
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(origErr.Code.HTTPCode())
	if _, err := rw.Write(buf.Bytes()); err != nil {
		origErr.Err = errors.Join(origErr.Err, err)
		clog.AddError(ctx, origErr)
	}
}
