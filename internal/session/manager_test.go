package session

import (
	"sync"
	"testing"
	"time"

	"github.com/drawing-board/backend/internal/board"
	"github.com/drawing-board/backend/internal/models"
	"github.com/drawing-board/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(opts Options) (*Manager, *fakeClock) {
	clock := &fakeClock{now: testutil.FixedTime}
	m := NewManagerWithOptions(opts)
	m.now = clock.Now
	return m, clock
}

func TestSessionManager(t *testing.T) {
	m, _ := newTestManager(DefaultOptions())

	sess, pass, err := m.Create(nil)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, sess.Status)
	assert.Equal(t, "canvas_500_300_0", sess.SurfaceKey)
	assert.True(t, pass.Reset)
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, sess.ID, got.ID)

	sess, pass, err = m.Apply(sess.ID, board.LoadDocument{Data: []byte(testutil.SampleDocument)})
	require.NoError(t, err)
	assert.True(t, sess.HasDocument)
	assert.Equal(t, 3, sess.ObjectCount)
	assert.Len(t, pass.Initial.Objects, 3)

	sess, _, err = m.Apply(sess.ID, board.ClearBoard{})
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Epoch)

	snap, ok := m.Snapshot(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "canvas_500_300_1", snap.SurfaceKey)

	closed, ok := m.Delete(sess.ID)
	require.True(t, ok)
	assert.Equal(t, models.SessionStatusClosed, closed.Status)
	_, _, err = m.Apply(sess.ID, board.Refresh{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCreateRejectsInvalidConfig(t *testing.T) {
	m, _ := newTestManager(DefaultOptions())
	cfg := models.DefaultBoardConfig()
	cfg.GridSize = 5

	_, _, err := m.Create(&cfg)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"gridSize"}, verr.Fields)
	assert.Equal(t, 0, m.Count())
}

func TestApplyRejectsInvalidConfig(t *testing.T) {
	m, _ := newTestManager(DefaultOptions())
	sess, _, err := m.Create(nil)
	require.NoError(t, err)

	cfg := sess.Config
	cfg.Tool = "spray"
	cfg.FillOpacity = 2
	_, _, err = m.Apply(sess.ID, board.ConfigChanged{Config: cfg})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"tool", "fillOpacity"}, verr.Fields)

	got, _ := m.Get(sess.ID)
	assert.Equal(t, models.ToolFreedraw, got.Config.Tool)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSessions = 2
	m, clock := newTestManager(opts)

	a, _, err := m.Create(nil)
	require.NoError(t, err)
	clock.Advance(time.Second)
	b, _, err := m.Create(nil)
	require.NoError(t, err)
	clock.Advance(time.Second)
	require.True(t, m.TouchSession(a.ID))

	_, _, err = m.Create(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count())

	_, ok := m.Get(a.ID)
	assert.True(t, ok, "recently touched board survives")
	_, ok = m.Get(b.ID)
	assert.False(t, ok, "idle board is evicted")
}

func TestCleanupOldSessions(t *testing.T) {
	m, clock := newTestManager(DefaultOptions())

	old, _, err := m.Create(nil)
	require.NoError(t, err)
	clock.Advance(40 * time.Minute)
	fresh, _, err := m.Create(nil)
	require.NoError(t, err)

	m.CleanupOldSessions(SessionMaxAge)

	_, ok := m.Get(old.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)
}

func TestConcurrentApply(t *testing.T) {
	m, _ := newTestManager(DefaultOptions())
	sess, _, err := m.Create(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.Apply(sess.ID, board.ClearBoard{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, _ := m.Get(sess.ID)
	assert.Equal(t, 20, got.Epoch)
	assert.Len(t, m.List(), 1)
}
