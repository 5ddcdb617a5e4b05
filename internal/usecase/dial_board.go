package usecase

import (
	"sync"
	"time"

	"DialMeter/internal/domain/models"
)

// DialBoard holds the latest dial state for readers outside the poll loop.
// The loop is the only writer.
type DialBoard struct {
	mu      sync.RWMutex
	state   models.DialState
	started bool
	moved   bool
	subs    map[chan models.DialState]struct{}
}

func NewDialBoard(source string) *DialBoard {
	return &DialBoard{
		state: models.DialState{Source: source},
		subs:  make(map[chan models.DialState]struct{}),
	}
}

// Latest returns a copy of the state and whether any cycle has finished.
func (b *DialBoard) Latest() (models.DialState, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return copyState(b.state), b.started
}

// HasReading reports whether the dial has been moved at least once.
func (b *DialBoard) HasReading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.moved
}

// Apply folds a cycle result into the state. A failed cycle records the
// error and keeps the previous position.
func (b *DialBoard) Apply(res models.CycleResult, at time.Time) {
	b.mu.Lock()
	b.started = true
	b.state.Cycles++
	if res.OK() {
		b.moved = true
		b.state.Value = res.Value
		b.state.Angle = res.Command.Angle
		b.state.Duty = res.Command.Duty
		b.state.Probabilities = res.Probabilities
		b.state.Cached = res.Reading != nil && res.Reading.Cached
		b.state.UpdatedAt = at
	} else {
		b.state.Failures++
		if res.Err != nil {
			b.state.LastError = res.Err.Error()
		}
		b.state.LastErrorKind = res.Kind
		t := at
		b.state.LastErrorAt = &t
	}
	snapshot := copyState(b.state)
	// Sends stay under the lock; cancel closes channels.
	for ch := range b.subs {
		select {
		case ch <- snapshot:
		default:
			// slow subscriber; it will catch up on the next cycle
		}
	}
	b.mu.Unlock()
}

// Subscribe returns a channel receiving every new state and a cancel func.
func (b *DialBoard) Subscribe(buffer int) (<-chan models.DialState, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan models.DialState, buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
}

func copyState(s models.DialState) models.DialState {
	if s.Probabilities != nil {
		p := make(map[string]float64, len(s.Probabilities))
		for k, v := range s.Probabilities {
			p[k] = v
		}
		s.Probabilities = p
	}
	if s.LastErrorAt != nil {
		t := *s.LastErrorAt
		s.LastErrorAt = &t
	}
	return s
}
