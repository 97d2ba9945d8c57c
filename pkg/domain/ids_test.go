package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "verireg/pkg/domain-errors"
)

// TestParseAccountID_SecurityInvariants validates trust boundary parsing:
// account handles reaching the registry are non-empty, bounded and free of
// control or injection characters.
func TestParseAccountID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE identities;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "alice\x00bob", true},
		{"Oversized input", strings.Repeat("a", 129), true},
		{"Unicode zero-width space", "alice\u200Bbob", true},
		{"Empty string", "", true},
		{"Whitespace only", "   ", true},

		{"Max length", strings.Repeat("a", 128), false},
		{"SS58 style address", "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", false},
		{"Hex address", "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", false},
		{"UUID", "550e8400-e29b-41d4-a716-446655440000", false},
		{"Email-like handle", "verifier@agency.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAccountID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseAccountID_TrimsWhitespace(t *testing.T) {
	account, err := ParseAccountID("  alice  ")
	require.NoError(t, err)
	assert.Equal(t, AccountID("alice"), account)
	assert.False(t, account.IsNil())
	assert.True(t, AccountID("").IsNil())
}
