package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubmission(t *testing.T) {
	local := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("UTC+8", 8*3600))

	s := NewSubmission("Jane Doe", "jane@example.com", "555-1234", "Inquiry", "Hello", local)

	assert.Equal(t, "Jane Doe", s.Name)
	assert.Equal(t, "jane@example.com", s.Email)
	assert.Equal(t, "555-1234", s.Phone)
	assert.Equal(t, "Inquiry", s.Subject)
	assert.Equal(t, "Hello", s.Message)
	assert.Equal(t, time.UTC, s.Timestamp.Location())
	assert.True(t, s.Timestamp.Equal(local))
	assert.Empty(t, s.ID)
}

func TestSubmissionDocumentShape(t *testing.T) {
	s := NewSubmission("Jane Doe", "jane@example.com", "555-1234", "Inquiry", "Hello", time.Unix(0, 0))
	s.ID = "doc-1"

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Len(t, doc, 6)
	for _, key := range []string{"name", "email", "phone", "subject", "message", "timestamp"} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "id")
}
