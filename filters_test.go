package authkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNewAuditLogFilter tests the default filter values
func TestNewAuditLogFilter(t *testing.T) {
	filter := NewAuditLogFilter()

	assert.Equal(t, 100, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
	assert.Equal(t, "", filter.ActorID)
	assert.Equal(t, "", filter.TargetUserID)
	assert.Equal(t, "", filter.ItemName)
	assert.Equal(t, "", filter.RuleName)
	assert.Equal(t, "", filter.Action)
	assert.True(t, filter.Since.IsZero())
	assert.True(t, filter.Until.IsZero())
}

// TestAuditLogFilterFields tests that filter fields carry through
func TestAuditLogFilterFields(t *testing.T) {
	since := time.Now().Add(-time.Hour)
	filter := AuditLogFilter{
		ActorID:      "admin-user",
		TargetUserID: "user123",
		ItemName:     "editor",
		Action:       string(AuditActionAssigned),
		Since:        since,
		Limit:        10,
		Offset:       20,
	}

	assert.Equal(t, "admin-user", filter.ActorID)
	assert.Equal(t, "user123", filter.TargetUserID)
	assert.Equal(t, "editor", filter.ItemName)
	assert.Equal(t, "assigned", filter.Action)
	assert.Equal(t, since, filter.Since)
	assert.Equal(t, 10, filter.Limit)
	assert.Equal(t, 20, filter.Offset)
}
