package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verireg/internal/platform/kafka/consumer"
	auditpostgres "verireg/pkg/platform/audit/store/postgres"
)

func auditMessage(t *testing.T, action, category string) *consumer.Message {
	t.Helper()
	raw, err := json.Marshal(auditpostgres.Payload{
		ID:        uuid.NewString(),
		Category:  category,
		Timestamp: time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC).Format(time.RFC3339Nano),
		Account:   "alice",
		Action:    action,
		ActorID:   "verifier-1",
		RequestID: "req-1",
		ProofHash: "0xabcd",
	})
	require.NoError(t, err)
	return &consumer.Message{Value: raw}
}

func TestAuditRouter(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	t.Run("prints every event without a filter", func(t *testing.T) {
		var out bytes.Buffer
		r := newAuditRouter(&out, nil, logger)

		require.NoError(t, r.Handle(ctx, auditMessage(t, "identity_verified", "compliance")))
		require.NoError(t, r.Handle(ctx, auditMessage(t, "verifier_added", "security")))

		lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)
		assert.Contains(t, string(lines[0]), "2024-07-01T10:00:00Z")
		assert.Contains(t, string(lines[0]), "identity_verified")
		assert.Contains(t, string(lines[0]), "account=alice actor=verifier-1 request_id=req-1 proof=0xabcd")
		assert.Contains(t, string(lines[1]), "verifier_added")
	})

	t.Run("category filter drops other events", func(t *testing.T) {
		var out bytes.Buffer
		r := newAuditRouter(&out, []string{"security"}, logger)

		require.NoError(t, r.Handle(ctx, auditMessage(t, "identity_verified", "compliance")))
		require.NoError(t, r.Handle(ctx, auditMessage(t, "verifier_removed", "security")))

		assert.NotContains(t, out.String(), "identity_verified")
		assert.Contains(t, out.String(), "verifier_removed")
	})
}
