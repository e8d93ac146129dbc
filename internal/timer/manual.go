package timer

import "time"

// ManualScheduler is a Scheduler driven by Step instead of wall time.
type ManualScheduler struct {
	nextID  int
	entries map[int]func()
	order   []int
}

// NewManualScheduler returns an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{entries: map[int]func(){}}
}

// Every implements Scheduler. The interval is ignored; each Step is one period.
func (m *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	id := m.nextID
	m.nextID++
	m.entries[id] = fn
	m.order = append(m.order, id)
	return func() {
		delete(m.entries, id)
	}
}

// Step fires every active callback once, in registration order.
func (m *ManualScheduler) Step() {
	ids := append([]int(nil), m.order...)
	for _, id := range ids {
		if fn, ok := m.entries[id]; ok {
			fn()
		}
	}
	m.compact()
}

// StepN calls Step n times.
func (m *ManualScheduler) StepN(n int) {
	for i := 0; i < n; i++ {
		m.Step()
	}
}

// Active returns the number of live intervals.
func (m *ManualScheduler) Active() int {
	return len(m.entries)
}

func (m *ManualScheduler) compact() {
	kept := m.order[:0]
	for _, id := range m.order {
		if _, ok := m.entries[id]; ok {
			kept = append(kept, id)
		}
	}
	m.order = kept
}
