package testutil

import (
	"context"
	"net/http"
	"time"

	id "verireg/pkg/domain"
	"verireg/pkg/requestcontext"
)

// WithCaller adds an authenticated account to the request context.
// This simulates what the auth middleware does for bearer-token requests.
// Invalid accounts are not added.
func WithCaller(req *http.Request, account string) *http.Request {
	parsed, err := id.ParseAccountID(account)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithAccount(req.Context(), parsed))
}

// CallerContext returns a background context carrying caller, a request id
// and a fixed request time, as the HTTP middleware chain would.
func CallerContext(caller id.AccountID, now time.Time) context.Context {
	ctx := requestcontext.WithAccount(context.Background(), caller)
	ctx = requestcontext.WithRequestID(ctx, "test-request")
	return requestcontext.WithTime(ctx, now)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
