package hw

import "sync"

// FakePWM records every duty written. Used for dry runs and tests.
type FakePWM struct {
	mu     sync.Mutex
	duties []uint16
	err    error
	closed bool
}

func NewFakePWM() *FakePWM { return &FakePWM{} }

func (f *FakePWM) SetDuty(duty uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.duties = append(f.duties, duty)
	return nil
}

func (f *FakePWM) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// FailWith makes subsequent writes return err. nil clears it.
func (f *FakePWM) FailWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Duties returns a copy of every duty written so far.
func (f *FakePWM) Duties() []uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint16, len(f.duties))
	copy(out, f.duties)
	return out
}

// Last returns the most recent duty.
func (f *FakePWM) Last() (uint16, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.duties) == 0 {
		return 0, false
	}
	return f.duties[len(f.duties)-1], true
}

// FakeLED tracks state and the sequence of transitions.
type FakeLED struct {
	mu      sync.Mutex
	on      bool
	history []bool
}

func NewFakeLED() *FakeLED { return &FakeLED{} }

func (l *FakeLED) On() error  { return l.set(true) }
func (l *FakeLED) Off() error { return l.set(false) }
func (l *FakeLED) Close() error {
	return l.set(false)
}

func (l *FakeLED) set(v bool) error {
	l.mu.Lock()
	l.on = v
	l.history = append(l.history, v)
	l.mu.Unlock()
	return nil
}

func (l *FakeLED) IsOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

func (l *FakeLED) History() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]bool, len(l.history))
	copy(out, l.history)
	return out
}

// NoopLED is used when no indicator is wired.
type NoopLED struct{}

func (NoopLED) On() error    { return nil }
func (NoopLED) Off() error   { return nil }
func (NoopLED) Close() error { return nil }
