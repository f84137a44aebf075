// Package presence tracks which users currently have a post open for
// editing, so the panel can warn collaborators about concurrent edits.
//
// The registry is process-local and in-memory: it does not survive a
// restart and is not shared between instances, so a multi-instance
// deployment would show inconsistent presence.  That is a known
// limitation inherited from the system this replaces; the Registry
// interface exists so a shared store can be substituted without touching
// call sites.
package presence

import (
	"sort"
	"sync"
	"time"
)

// Entry is one user's live editing session on one post.
type Entry struct {
	UserID    uint64    `json:"userId"`
	UserName  string    `json:"userName"`
	StartedAt time.Time `json:"startedAt"`
}

// Status is the answer to "who else is editing this post right now".
// Others never contains the asking user.
type Status struct {
	EditingByOthers bool    `json:"editing"`
	Others          []Entry `json:"otherUsers"`
	SelfEditing     bool    `json:"currentUserEditing"`
}

// Registry is the presence contract handlers depend on.  Tracker is the
// in-memory implementation; a distributed backing store could satisfy the
// same interface later.
type Registry interface {
	Begin(postID string, userID uint64, userName string)
	Status(postID string, userID uint64) Status
	End(postID string, userID uint64)
}

// Tracker keeps editing sessions in a mutex-guarded map keyed by post ID,
// one entry per (post, user).  Entries expire after the TTL; a background
// sweep evicts them so abandoned sessions (browser crash, network loss
// before the unload signal fires) cannot grow the map forever.  The sweep
// is the correctness backstop, not a convenience: the client's leave
// signal is best effort.
type Tracker struct {
	mu      sync.Mutex
	buckets map[string]map[uint64]Entry

	ttl        time.Duration
	sweepEvery time.Duration

	now  func() time.Time // stubbed in tests
	done chan struct{}
	wg   sync.WaitGroup

	// onCount, when set, receives the total live entry count after every
	// mutation and sweep.  The server wires it to a metrics gauge.
	onCount func(int)
}

// New builds a Tracker with the given entry TTL and sweep interval.
// Call Start to launch the sweep and Stop on shutdown.
func New(ttl, sweepEvery time.Duration) *Tracker {
	return &Tracker{
		buckets:    make(map[string]map[uint64]Entry),
		ttl:        ttl,
		sweepEvery: sweepEvery,
		now:        func() time.Time { return time.Now().UTC() },
		done:       make(chan struct{}),
	}
}

// OnCount registers a callback invoked with the live entry count after
// every change.  Must be called before Start.
func (t *Tracker) OnCount(fn func(int)) { t.onCount = fn }

// Start launches the periodic sweep.  It returns immediately.
func (t *Tracker) Start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.Sweep()
			case <-t.done:
				return
			}
		}
	}()
}

// Stop cancels the sweep and waits for it to exit.  Safe to call once.
func (t *Tracker) Stop() {
	close(t.done)
	t.wg.Wait()
}

// Begin records that the user is editing the post.  Repeated calls from
// the same user refresh the entry's timestamp, so the TTL measures time
// since the last signal rather than since the tab was first opened; the
// editor UI re-posts periodically and acts as a heartbeat.
func (t *Tracker) Begin(postID string, userID uint64, userName string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.buckets[postID]
	if b == nil {
		b = make(map[uint64]Entry)
		t.buckets[postID] = b
	}
	b[userID] = Entry{UserID: userID, UserName: userName, StartedAt: t.now()}
	t.notifyLocked()
}

// Status reports the post's live entries, split into the asking user and
// everyone else.  Expiry is evaluated here as well as in the sweep: an
// entry past its TTL is never reported live, even if the sweep has not
// run since it expired.
func (t *Tracker) Status(postID string, userID uint64) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var st Status
	for _, e := range t.buckets[postID] {
		if now.Sub(e.StartedAt) > t.ttl {
			continue
		}
		if e.UserID == userID {
			st.SelfEditing = true
			continue
		}
		st.Others = append(st.Others, e)
	}
	sort.Slice(st.Others, func(i, j int) bool {
		if st.Others[i].StartedAt.Equal(st.Others[j].StartedAt) {
			return st.Others[i].UserID < st.Others[j].UserID
		}
		return st.Others[i].StartedAt.Before(st.Others[j].StartedAt)
	})
	st.EditingByOthers = len(st.Others) > 0
	if st.Others == nil {
		st.Others = []Entry{}
	}
	return st
}

// End removes the user's entry and drops the bucket once it is empty.
func (t *Tracker) End(postID string, userID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.buckets[postID]
	if b == nil {
		return
	}
	delete(b, userID)
	if len(b) == 0 {
		delete(t.buckets, postID)
	}
	t.notifyLocked()
}

// Sweep drops every expired entry and every empty bucket.  It runs on the
// Start ticker and is exported for tests and for manual eviction.
func (t *Tracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for postID, b := range t.buckets {
		for userID, e := range b {
			if now.Sub(e.StartedAt) > t.ttl {
				delete(b, userID)
			}
		}
		if len(b) == 0 {
			delete(t.buckets, postID)
		}
	}
	t.notifyLocked()
}

// entryCount is used by tests to assert sweep convergence.
func (t *Tracker) entryCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, b := range t.buckets {
		n += len(b)
	}
	return n
}

func (t *Tracker) notifyLocked() {
	if t.onCount == nil {
		return
	}
	n := 0
	for _, b := range t.buckets {
		n += len(b)
	}
	t.onCount(n)
}
