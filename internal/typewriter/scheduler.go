package typewriter

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs f once after d. The returned stop cancels a pending call
// and reports whether it did so.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// RealScheduler uses wall-clock timers. Callbacks run on timer goroutines.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// ManualScheduler is a virtual clock. Callbacks run synchronously inside
// Advance, in due-time order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	at       time.Duration
	seq      int
	f        func()
	canceled bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	task := &manualTask{at: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, task)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if task.canceled || task.f == nil {
			return false
		}
		task.canceled = true
		return true
	}
}

// Now returns the virtual time elapsed since creation.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of scheduled, uncanceled calls.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.canceled && t.f != nil {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every call that falls due,
// including calls scheduled by those callbacks.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		task := m.popDue(target)
		if task == nil {
			break
		}
		task()
	}

	m.mu.Lock()
	if m.now < target {
		m.now = target
	}
	m.mu.Unlock()
}

// RunPending advances until nothing is scheduled. It gives up after limit
// callbacks and returns how many ran.
func (m *ManualScheduler) RunPending(limit int) int {
	ran := 0
	for ran < limit {
		task := m.popDue(-1)
		if task == nil {
			break
		}
		task()
		ran++
	}
	return ran
}

// popDue removes the earliest live task due at or before target (any task
// when target is negative) and moves the clock to it.
func (m *ManualScheduler) popDue(target time.Duration) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.canceled && t.f != nil {
			live = append(live, t)
		}
	}
	m.tasks = live
	if len(m.tasks) == 0 {
		return nil
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at == m.tasks[j].at {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].at < m.tasks[j].at
	})
	next := m.tasks[0]
	if target >= 0 && next.at > target {
		return nil
	}
	m.tasks = m.tasks[1:]
	if next.at > m.now {
		m.now = next.at
	}
	f := next.f
	next.f = nil
	return f
}
