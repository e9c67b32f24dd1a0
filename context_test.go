package authkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextUserID tests user ID storage and retrieval
func TestContextUserID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetUserID(ctx))

	ctx = WithUserID(ctx, "user123")
	assert.Equal(t, "user123", GetUserID(ctx))
}

// TestContextActorID tests actor ID storage and the user ID fallback
func TestContextActorID(t *testing.T) {
	t.Run("Explicit actor", func(t *testing.T) {
		ctx := WithActorID(context.Background(), "admin-user")
		assert.Equal(t, "admin-user", GetActorID(ctx))
	})

	t.Run("Falls back to user ID", func(t *testing.T) {
		ctx := WithUserID(context.Background(), "user123")
		assert.Equal(t, "user123", GetActorID(ctx))
	})

	t.Run("Actor wins over user", func(t *testing.T) {
		ctx := WithUserID(context.Background(), "user123")
		ctx = WithActorID(ctx, "admin-user")
		assert.Equal(t, "admin-user", GetActorID(ctx))
	})

	t.Run("Empty context", func(t *testing.T) {
		assert.Equal(t, "", GetActorID(context.Background()))
	})
}

// TestContextRequestMetadata tests IP, user agent, and request ID values
func TestContextRequestMetadata(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetIPAddress(ctx))
	assert.Equal(t, "", GetUserAgent(ctx))
	assert.Equal(t, "", GetRequestID(ctx))

	ctx = WithIPAddress(ctx, "10.0.0.1")
	ctx = WithUserAgent(ctx, "curl/8.0")
	ctx = WithRequestID(ctx, "req-42")

	assert.Equal(t, "10.0.0.1", GetIPAddress(ctx))
	assert.Equal(t, "curl/8.0", GetUserAgent(ctx))
	assert.Equal(t, "req-42", GetRequestID(ctx))
}

// TestAuditContextRoundTrip tests extracting and re-applying audit context
func TestAuditContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = WithActorID(ctx, "admin-user")
	ctx = WithIPAddress(ctx, "10.0.0.1")
	ctx = WithUserAgent(ctx, "curl/8.0")
	ctx = WithRequestID(ctx, "req-42")

	ac := GetAuditContext(ctx)
	assert.Equal(t, "admin-user", ac.ActorID)
	assert.Equal(t, "10.0.0.1", ac.IPAddress)
	assert.Equal(t, "curl/8.0", ac.UserAgent)
	assert.Equal(t, "req-42", ac.RequestID)

	ctx2 := WithAuditContext(context.Background(), ac)
	assert.Equal(t, ac, GetAuditContext(ctx2))
}

// TestWithAuditContextSkipsEmpty tests that empty fields do not overwrite
func TestWithAuditContextSkipsEmpty(t *testing.T) {
	ctx := WithActorID(context.Background(), "original-actor")
	ctx = WithAuditContext(ctx, AuditContext{IPAddress: "10.0.0.1"})

	assert.Equal(t, "original-actor", GetActorID(ctx))
	assert.Equal(t, "10.0.0.1", GetIPAddress(ctx))
}
