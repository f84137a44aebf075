package presence

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTTL   = 5 * time.Minute
	testSweep = time.Minute
)

// newTestTracker returns a tracker with a controllable clock.  The sweep
// goroutine is not started; tests call Sweep directly.
func newTestTracker() (*Tracker, *time.Time) {
	t := New(testTTL, testSweep)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	t.now = func() time.Time { return now }
	return t, &now
}

func TestBeginIsIdempotentPerUser(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Begin("post-42", 1, "Aysel")
	tr.Begin("post-42", 1, "Aysel")

	assert.Equal(t, 1, tr.entryCount())
	st := tr.Status("post-42", 1)
	assert.True(t, st.SelfEditing)
	assert.False(t, st.EditingByOthers)
	assert.Empty(t, st.Others)
}

func TestStatusSplitsSelfFromOthers(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Begin("post-42", 1, "Aysel")  // editor
	tr.Begin("post-42", 2, "Kamran") // reporter, one second "later" is irrelevant here

	st := tr.Status("post-42", 1)
	assert.True(t, st.SelfEditing)
	assert.True(t, st.EditingByOthers)
	require.Len(t, st.Others, 1)
	assert.Equal(t, uint64(2), st.Others[0].UserID)
	assert.Equal(t, "Kamran", st.Others[0].UserName)

	// The other side sees the mirror image.
	st2 := tr.Status("post-42", 2)
	assert.True(t, st2.SelfEditing)
	require.Len(t, st2.Others, 1)
	assert.Equal(t, uint64(1), st2.Others[0].UserID)
}

func TestStatusFiltersExpiredEntriesBeforeSweep(t *testing.T) {
	tr, now := newTestTracker()

	tr.Begin("post-42", 1, "Aysel")
	*now = now.Add(testTTL + time.Second)

	// No sweep has run; the query-time TTL filter must still hide it.
	st := tr.Status("post-42", 2)
	assert.False(t, st.EditingByOthers)
	assert.Empty(t, st.Others)

	st1 := tr.Status("post-42", 1)
	assert.False(t, st1.SelfEditing)
}

func TestBeginRefreshesTimestamp(t *testing.T) {
	tr, now := newTestTracker()

	tr.Begin("post-42", 1, "Aysel")
	*now = now.Add(4 * time.Minute)
	tr.Begin("post-42", 1, "Aysel") // heartbeat
	*now = now.Add(4 * time.Minute)

	// 8 minutes after the first call but only 4 after the heartbeat:
	// the entry must still be live.
	st := tr.Status("post-42", 2)
	assert.True(t, st.EditingByOthers)
}

func TestEndRemovesEntryAndEmptyBucket(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Begin("post-42", 1, "Aysel")
	tr.Begin("post-42", 2, "Kamran")

	tr.End("post-42", 1)
	assert.Equal(t, 1, tr.entryCount())

	tr.End("post-42", 2)
	assert.Equal(t, 0, tr.entryCount())
	assert.Empty(t, tr.buckets)

	// Ending a session that does not exist is a no-op.
	tr.End("post-42", 2)
	tr.End("missing", 9)
}

func TestSweepEvictsExpiredAndDropsEmptyBuckets(t *testing.T) {
	tr, now := newTestTracker()

	tr.Begin("post-1", 1, "Aysel")
	tr.Begin("post-2", 2, "Kamran")
	*now = now.Add(2 * time.Minute)
	tr.Begin("post-2", 3, "Leyla")

	*now = now.Add(testTTL - time.Minute) // post-1 and Kamran expired, Leyla alive

	tr.Sweep()

	assert.Equal(t, 1, tr.entryCount())
	_, post1Alive := tr.buckets["post-1"]
	assert.False(t, post1Alive, "empty bucket must be removed")
	st := tr.Status("post-2", 99)
	require.Len(t, st.Others, 1)
	assert.Equal(t, uint64(3), st.Others[0].UserID)
}

func TestConcurrentBeginsAreNotLost(t *testing.T) {
	tr := New(testTTL, testSweep)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			tr.Begin("post-42", id, "user")
			tr.Status("post-42", id)
		}(uint64(i))
	}
	// Sweeps racing the writers must never observe a half-written bucket.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			tr.Sweep()
		}
	}()
	wg.Wait()

	assert.Equal(t, 50, tr.entryCount())
}

func TestStartStopLifecycle(t *testing.T) {
	tr := New(time.Millisecond, time.Millisecond)
	tr.Start()
	tr.Begin("post-1", 1, "Aysel")
	time.Sleep(20 * time.Millisecond)
	tr.Stop()

	// After the TTL and at least one sweep tick, the registry is empty.
	assert.Equal(t, 0, tr.entryCount())
}

func TestOnCountReportsLiveEntries(t *testing.T) {
	tr, now := newTestTracker()
	var last int
	tr.OnCount(func(n int) { last = n })

	tr.Begin("post-1", 1, "Aysel")
	tr.Begin("post-2", 2, "Kamran")
	assert.Equal(t, 2, last)

	*now = now.Add(testTTL + time.Second)
	tr.Sweep()
	assert.Equal(t, 0, last)
}
