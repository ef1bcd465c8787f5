package seimart

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/seimart/seimart/schema"
	"github.com/stretchr/testify/assert"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewBoltStore(t.TempDir())
	assert.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreArtifactRoundTrip(t *testing.T) {
	s := testStore(t)
	content := []byte("# Findings\n\nSEI validator set churn, Q2.")

	assert.False(t, s.ExistArtifact("research-1"))
	assert.NoError(t, s.SaveArtifact("research-1", content))
	assert.True(t, s.ExistArtifact("research-1"))

	got, err := s.LoadArtifact("research-1")
	assert.NoError(t, err)
	assert.Equal(t, content, got)

	meta, err := s.LoadArtifactMeta("research-1")
	assert.NoError(t, err)
	assert.Equal(t, "research-1", meta.ResearchId)
	assert.Equal(t, int64(len(content)), meta.Size)
	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), meta.Sha256)
}

func TestStoreArtifactLimits(t *testing.T) {
	s := testStore(t)

	assert.ErrorIs(t, s.SaveArtifact("empty", nil), schema.ErrNullData)
	assert.ErrorIs(t, s.SaveArtifact("huge", make([]byte, schema.MaxArtifactSize+1)), schema.ErrDataTooBig)
	assert.False(t, s.ExistArtifact("empty"))
}

func TestStoreDelArtifact(t *testing.T) {
	s := testStore(t)

	assert.NoError(t, s.SaveArtifact("research-2", []byte("data")))
	assert.NoError(t, s.DelArtifact("research-2"))
	assert.False(t, s.ExistArtifact("research-2"))
	// deleting a missing artifact is a no-op
	assert.NoError(t, s.DelArtifact("research-2"))
}
