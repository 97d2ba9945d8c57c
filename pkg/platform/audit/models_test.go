package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	cases := map[AuditEvent]EventCategory{
		EventIdentitySubmitted: CategoryCompliance,
		EventIdentityVerified:  CategoryCompliance,
		EventVerifierAdded:     CategorySecurity,
		EventVerifierRemoved:   CategorySecurity,
		AuditEvent("unknown"):  CategoryOperations,
	}
	for event, want := range cases {
		assert.Equal(t, want, event.Category(), string(event))
	}
}
