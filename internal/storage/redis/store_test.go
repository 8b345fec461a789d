package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"logicleafs/backend/internal/config"
	"logicleafs/backend/internal/domain"
)

func TestSubmissionValues(t *testing.T) {
	ts := time.Date(2026, 10, 15, 12, 30, 45, 123, time.UTC)
	s := domain.NewSubmission("Jane Doe", "jane@example.com", "555-1234", "Inquiry", "Hello", ts)

	values := submissionValues(s)

	assert.Equal(t, map[string]interface{}{
		"name":      "Jane Doe",
		"email":     "jane@example.com",
		"phone":     "555-1234",
		"subject":   "Inquiry",
		"message":   "Hello",
		"timestamp": "2026-10-15T12:30:45.000000123Z",
	}, values)
}

func TestNewStore_UsesSubmissionsStream(t *testing.T) {
	store := NewStore(&Client{})
	assert.Equal(t, "submissions", store.stream)
}

func TestNew_Unreachable(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{Address: "127.0.0.1:1"}, zap.NewNop())

	assert.Nil(t, client)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
