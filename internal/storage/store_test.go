// store_test.go - Tests for the artifact store
package storage

import (
	"testing"
	"time"

	"github.com/drawing-board/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(max int) *MemoryStore {
	s := NewMemoryStore(max)
	tick := testutil.FixedTime
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return s
}

func TestMemoryStore(t *testing.T) {
	s := createTestStore(10)

	data := []byte("png bytes")
	info, err := s.Save("sess-1", "tablero_20240305_140709.png", "image/png", data)
	require.NoError(t, err)
	assert.Equal(t, int64(9), info.Size)
	assert.Equal(t, "sess-1", info.SessionID)

	data[0] = 'X'
	got, contents, err := s.Open(info.ID)
	require.NoError(t, err)
	assert.Equal(t, info, got)
	assert.Equal(t, "png bytes", string(contents), "store keeps its own copy")

	meta, err := s.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/png", meta.MIMEType)

	require.NoError(t, s.Delete(info.ID))
	_, err = s.Get(info.ID)
	assert.ErrorIs(t, err, ErrArtifactNotFound)
	assert.Error(t, s.Delete(info.ID))
}

func TestMemoryStoreRequiresName(t *testing.T) {
	_, err := createTestStore(1).Save("s", "", "image/png", nil)
	assert.Error(t, err)
}

func TestMemoryStoreListAndEviction(t *testing.T) {
	s := createTestStore(3)

	var ids []string
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png"} {
		info, err := s.Save("s", name, "image/png", []byte(name))
		require.NoError(t, err)
		ids = append(ids, info.ID)
	}

	list, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "d.png", list[0].Name)
	assert.Equal(t, "b.png", list[2].Name)

	_, err = s.Get(ids[0])
	assert.Error(t, err, "oldest artifact is evicted")

	list, err = s.List(1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
