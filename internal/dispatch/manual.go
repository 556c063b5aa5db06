package dispatch

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by a virtual clock. Tasks run on the
// goroutine calling Advance or Flush.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
	posted []func()
}

type manualTimer struct {
	id     int
	at     time.Time
	every  time.Duration
	fn     func()
	active bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.posted = append(m.posted, fn)
	m.mu.Unlock()
}

func (m *Manual) After(d time.Duration, fn func()) func() {
	return m.add(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) func() {
	return m.add(d, d, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{id: m.seq, at: m.now.Add(d), every: every, fn: fn, active: true}
	m.timers = append(m.timers, t)
	return func() {
		m.mu.Lock()
		t.active = false
		m.mu.Unlock()
	}
}

// Pending reports how many timers are still armed.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if t.active {
			n++
		}
	}
	return n
}

// Flush runs posted tasks until none remain.
func (m *Manual) Flush() {
	for {
		m.mu.Lock()
		if len(m.posted) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.posted[0]
		m.posted = m.posted[1:]
		m.mu.Unlock()
		fn()
	}
}

// Advance moves the clock forward, firing due timers in deadline order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	for {
		m.Flush()
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		if next.every > 0 {
			next.at = next.at.Add(next.every)
		} else {
			next.active = false
		}
		fn := next.fn
		m.mu.Unlock()
		fn()
	}
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if t.active {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].at.Equal(live[j].at) {
			return live[i].id < live[j].id
		}
		return live[i].at.Before(live[j].at)
	})
	if len(live) == 0 || live[0].at.After(target) {
		return nil
	}
	return live[0]
}
