package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"DialMeter/internal/domain/models"
	"DialMeter/internal/service/hw"
	"DialMeter/internal/service/servo"
	"DialMeter/internal/services/dial"
	"DialMeter/pkg/metrics"

	"github.com/benbjohnson/clock"
)

type fakeSource struct {
	mu       sync.Mutex
	readings []*models.Reading
	errs     []error
	calls    int
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Fetch(context.Context) (*models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.readings) {
		return s.readings[i], nil
	}
	return s.readings[len(s.readings)-1], nil
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.DialEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *models.DialEvent) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type harness struct {
	src   *fakeSource
	pwm   *hw.FakePWM
	led   *hw.FakeLED
	pub   *recordingPublisher
	board *DialBoard
	cycle *DialCycle
}

func newHarness(t *testing.T, src *fakeSource, opts ...dial.MapperOption) *harness {
	t.Helper()
	mapper, err := dial.NewMapper(opts...)
	if err != nil {
		t.Fatalf("mapper: %v", err)
	}
	pwm := hw.NewFakePWM()
	act, err := servo.NewActuator(pwm, servo.CalibrationElection)
	if err != nil {
		t.Fatalf("actuator: %v", err)
	}
	h := &harness{
		src:   src,
		pwm:   pwm,
		led:   hw.NewFakeLED(),
		pub:   &recordingPublisher{},
		board: NewDialBoard(src.Name()),
	}
	h.cycle = NewDialCycle(src, dial.NewResolver("Donald Trump"), mapper, act, h.led, h.pub, metrics.Noop{}, h.board, nil, clock.NewMock())
	return h
}

func electionReading(harris, trump float64) *models.Reading {
	return &models.Reading{
		Source: "fake",
		Kind:   models.KindOdds,
		Odds:   map[string]float64{"Kamala Harris": harris, "Donald Trump": trump},
	}
}

func TestCycleMovesDial(t *testing.T) {
	h := newHarness(t, &fakeSource{readings: []*models.Reading{electionReading(1.90, 2.05)}})

	res := h.cycle.Run(context.Background())
	if !res.OK() {
		t.Fatalf("expected ok cycle, got %v", res.Err)
	}
	wantAngle, _ := dial.WindowedAngle(res.Value, 45, 55, 0, 180)
	if res.Command.Angle != wantAngle {
		t.Fatalf("expected angle %v, got %v", wantAngle, res.Command.Angle)
	}
	if last, _ := h.pwm.Last(); last != servo.CalibrationElection.DutyFor(wantAngle) {
		t.Fatalf("unexpected duty written %d", last)
	}
	if hist := h.led.History(); len(hist) != 2 || !hist[0] || hist[1] {
		t.Fatalf("expected led on then off, got %v", hist)
	}
	state, ok := h.board.Latest()
	if !ok || state.Angle != wantAngle || len(state.Probabilities) != 2 {
		t.Fatalf("unexpected board state %+v", state)
	}
	if len(h.pub.events) != 1 || h.pub.events[0].Outcome != models.KindOK {
		t.Fatalf("expected one ok event, got %v", h.pub.events)
	}
}

func TestCycleFailureKeepsPosition(t *testing.T) {
	src := &fakeSource{
		readings: []*models.Reading{electionReading(1.90, 2.05)},
		errs:     []error{nil, &models.FetchError{Source: "fake", Err: errors.New("timeout")}},
	}
	h := newHarness(t, src)

	first := h.cycle.Run(context.Background())
	second := h.cycle.Run(context.Background())
	if second.OK() || second.Kind != models.KindFetch {
		t.Fatalf("expected fetch failure, got %+v", second)
	}
	if n := len(h.pwm.Duties()); n != 1 {
		t.Fatalf("expected a single pwm write, got %d", n)
	}
	state, _ := h.board.Latest()
	if state.Angle != first.Command.Angle || state.Failures != 1 || state.Cycles != 2 {
		t.Fatalf("unexpected board state %+v", state)
	}
	if state.LastErrorKind != models.KindFetch {
		t.Fatalf("unexpected error kind %s", state.LastErrorKind)
	}
	if h.led.IsOn() {
		t.Fatalf("led left on after failure")
	}
}

func TestCycleRejectsInvalidOdds(t *testing.T) {
	h := newHarness(t, &fakeSource{readings: []*models.Reading{electionReading(0, 2.05)}})
	res := h.cycle.Run(context.Background())
	if res.Kind != models.KindInvalidOdds {
		t.Fatalf("expected invalid odds, got %s (%v)", res.Kind, res.Err)
	}
	if len(h.pwm.Duties()) != 0 {
		t.Fatalf("expected no pwm write")
	}
}

func TestCycleMissingTarget(t *testing.T) {
	h := newHarness(t, &fakeSource{readings: []*models.Reading{{
		Source: "fake",
		Kind:   models.KindOdds,
		Odds:   map[string]float64{"Kamala Harris": 1.5},
	}}})
	res := h.cycle.Run(context.Background())
	if res.Kind != models.KindMissingField {
		t.Fatalf("expected missing field, got %s", res.Kind)
	}
}

func TestCycleLinearPercentage(t *testing.T) {
	src := &fakeSource{readings: []*models.Reading{{Source: "fake", Kind: models.KindPercentage, Percentage: 0}}}
	h := newHarness(t, src, dial.WithPolicy(dial.PolicyLinear), dial.WithDegreeRange(0, 110))
	res := h.cycle.Run(context.Background())
	if !res.OK() || res.Command.Angle != 180 || res.Command.Duty != 8550 {
		t.Fatalf("unexpected result %+v", res.Command)
	}
}

func TestPollerRunOnceReturnsCycleError(t *testing.T) {
	h := newHarness(t, &fakeSource{errs: []error{&models.MissingFieldError{Field: "[0]"}}, readings: []*models.Reading{electionReading(2, 2)}})
	p := NewPoller(h.cycle, time.Hour, true, clock.NewMock(), nil)
	err := p.Run(context.Background())
	var missErr *models.MissingFieldError
	if !errors.As(err, &missErr) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
}

func TestPollerRepeatsOnInterval(t *testing.T) {
	mock := clock.NewMock()
	src := &fakeSource{readings: []*models.Reading{electionReading(1.90, 2.05)}}
	h := newHarness(t, src)
	p := NewPoller(h.cycle, 300*time.Second, false, mock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for src.Calls() < 3 {
		select {
		case <-deadline:
			t.Fatalf("poller did not repeat, calls=%d", src.Calls())
		default:
		}
		mock.Add(300 * time.Second)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean stop, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("poller did not stop")
	}
}

func TestBoardSubscribe(t *testing.T) {
	b := NewDialBoard("fake")
	ch, cancel := b.Subscribe(1)
	defer cancel()
	b.Apply(models.CycleResult{Value: 50, Command: &models.ActuatorCommand{Angle: 90, Duty: 5150}, Kind: models.KindOK}, time.Unix(0, 0))
	select {
	case s := <-ch:
		if s.Angle != 90 || s.Duty != 5150 {
			t.Fatalf("unexpected state %+v", s)
		}
	default:
		t.Fatalf("expected state on subscription")
	}
	if !b.HasReading() {
		t.Fatalf("expected reading recorded")
	}
}

func TestBoardApplyWhileSubscribersCancel(t *testing.T) {
	b := NewDialBoard("fake")
	res := models.CycleResult{Value: 50, Command: &models.ActuatorCommand{Angle: 90, Duty: 5150}, Kind: models.KindOK}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, cancel := b.Subscribe(1)
				cancel()
			}
		}()
	}

	for i := 0; i < 5000; i++ {
		b.Apply(res, time.Unix(int64(i), 0))
	}
	close(stop)
	wg.Wait()

	if s, _ := b.Latest(); s.Cycles != 5000 {
		t.Fatalf("expected 5000 cycles, got %d", s.Cycles)
	}
}
