package admin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verireg/internal/jwt_token/revocation"
	"verireg/pkg/platform/audit"
	auditmemory "verireg/pkg/platform/audit/store/memory"
	"verireg/pkg/testutil"
)

const adminToken = "secret-token"

func newAdminRouter(t *testing.T) (http.Handler, *revocation.InMemoryTRL, *auditmemory.InMemoryStore) {
	t.Helper()
	trl := revocation.NewInMemoryTRL()
	store := auditmemory.NewInMemoryStore()
	h := New(trl, store, adminToken, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return r, trl, store
}

func withAdmin(req *http.Request) *http.Request {
	req.Header.Set("X-Admin-Token", adminToken)
	return req
}

func TestAdminTokenRequired(t *testing.T) {
	router, _, _ := newAdminRouter(t)
	req := testutil.NewRequest(t, http.MethodGet, "/admin/audit/alice")
	rec := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rec, http.StatusUnauthorized, "unauthorized")
}

func TestRevokeToken(t *testing.T) {
	router, trl, _ := newAdminRouter(t)

	req := withAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/admin/revocations", map[string]any{
		"jti": "token-1", "ttl_seconds": 3600,
	}))
	rec := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rec, http.StatusNoContent)

	revoked, err := trl.IsTokenRevoked(context.Background(), "token-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	t.Run("rejects missing ttl", func(t *testing.T) {
		req := withAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/admin/revocations", map[string]any{"jti": "token-2"}))
		rec := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rec, http.StatusUnprocessableEntity, "validation_error")
	})

	t.Run("rejects ttl beyond the duration range", func(t *testing.T) {
		req := withAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/admin/revocations", map[string]any{
			"jti": "token-3", "ttl_seconds": int64(18446744074),
		}))
		rec := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rec, http.StatusUnprocessableEntity, "validation_error")

		revoked, err := trl.IsTokenRevoked(context.Background(), "token-3")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestListAudit(t *testing.T) {
	router, _, store := newAdminRouter(t)
	require.NoError(t, store.Append(context.Background(), audit.Event{
		Account:   "alice",
		Action:    string(audit.EventIdentitySubmitted),
		Category:  audit.CategoryCompliance,
		ActorID:   "alice",
		ProofHash: "0x01",
		Timestamp: time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
	}))

	rec := testutil.DoRequest(router, withAdmin(testutil.NewRequest(t, http.MethodGet, "/admin/audit/alice")))
	testutil.AssertStatusOK(t, rec)
	resp := testutil.UnmarshalResponse[AuditListResponse](t, rec)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "identity_submitted", resp.Events[0].Action)
	assert.Equal(t, "compliance", resp.Events[0].Category)
	assert.Equal(t, "0x01", resp.Events[0].ProofHash)
}
