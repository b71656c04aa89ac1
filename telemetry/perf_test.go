package telemetry

import (
	"testing"
	"time"
)

// fakeClock advances by a scripted step on every reading.
type fakeClock struct {
	t     time.Time
	steps []time.Duration
}

func (c *fakeClock) now() time.Time {
	if len(c.steps) > 0 {
		c.t = c.t.Add(c.steps[0])
		c.steps = c.steps[1:]
	}
	return c.t
}

func newTestTimer(steps ...time.Duration) *TickTimer {
	c := &fakeClock{t: time.Unix(0, 0), steps: steps}
	tt := NewTickTimer()
	tt.now = c.now
	return tt
}

func us(n int) time.Duration { return time.Duration(n) * time.Microsecond }

func TestPhaseNames(t *testing.T) {
	want := []string{"spawn", "plan", "act", "cleanup", "telemetry"}
	for i, p := range Phases() {
		if p.String() != want[i] {
			t.Errorf("phase %d = %q, want %q", i, p, want[i])
		}
	}
	if NumPhases.String() != "unknown" {
		t.Errorf("NumPhases.String() = %q", NumPhases.String())
	}
}

func TestTickTimerSplitsPhases(t *testing.T) {
	// Readings: Begin, Enter x5, End. The step before each reading is the
	// time spent in the phase it closes.
	tt := newTestTimer(
		0,      // Begin
		0,      // Enter spawn
		us(10), // Enter plan (spawn took 10)
		us(40), // Enter act (plan took 40)
		us(30), // Enter cleanup (act took 30)
		us(5),  // Enter telemetry (cleanup took 5)
		us(15), // End (telemetry took 15)
	)
	tt.Begin()
	for _, p := range Phases() {
		tt.Enter(p)
	}
	tt.End()

	s := tt.Flush()
	if s.Ticks != 1 {
		t.Fatalf("Ticks = %d, want 1", s.Ticks)
	}
	if s.MeanTick != us(100) || s.MaxTick != us(100) || s.P90Tick != us(100) {
		t.Errorf("mean/max/p90 = %v/%v/%v, want 100µs", s.MeanTick, s.MaxTick, s.P90Tick)
	}

	want := [NumPhases]time.Duration{us(10), us(40), us(30), us(5), us(15)}
	if s.PhaseMean != want {
		t.Errorf("PhaseMean = %v, want %v", s.PhaseMean, want)
	}
	if got := s.Share(PhasePlan); got != 0.4 {
		t.Errorf("plan share = %v, want 0.4", got)
	}
	if s.TicksPerSecond != 10000 {
		t.Errorf("TicksPerSecond = %v, want 10000", s.TicksPerSecond)
	}
}

func TestTickTimerWindowAggregates(t *testing.T) {
	var steps []time.Duration
	for _, d := range []int{100, 200, 300, 400} {
		// Begin, Enter act, End
		steps = append(steps, 0, 0, us(d))
	}
	tt := newTestTimer(steps...)
	for range 4 {
		tt.Begin()
		tt.Enter(PhaseAct)
		tt.End()
	}

	s := tt.Flush()
	if s.Ticks != 4 {
		t.Fatalf("Ticks = %d, want 4", s.Ticks)
	}
	if s.MeanTick != us(250) {
		t.Errorf("MeanTick = %v, want 250µs", s.MeanTick)
	}
	if s.MaxTick != us(400) || s.P90Tick != us(400) {
		t.Errorf("max/p90 = %v/%v, want 400µs", s.MaxTick, s.P90Tick)
	}
	if s.PhaseMean[PhaseAct] != us(250) || s.Share(PhaseAct) != 1 {
		t.Errorf("act mean %v share %v, want all of the tick", s.PhaseMean[PhaseAct], s.Share(PhaseAct))
	}
	if s.PhaseMean[PhaseSpawn] != 0 {
		t.Errorf("spawn mean = %v, want 0", s.PhaseMean[PhaseSpawn])
	}
}

func TestTickTimerFlushStartsNewWindow(t *testing.T) {
	tt := newTestTimer(0, 0, us(80), 0, 0, us(20))
	tt.Begin()
	tt.Enter(PhasePlan)
	tt.End()

	first := tt.Flush()
	if first.MeanTick != us(80) {
		t.Fatalf("first window mean = %v, want 80µs", first.MeanTick)
	}

	// Before any new tick the last window stays visible
	if cur := tt.Current(); cur.Ticks != 1 || cur.MeanTick != us(80) {
		t.Errorf("Current() between windows = %+v, want the closed window", cur)
	}

	tt.Begin()
	tt.Enter(PhaseCleanup)
	tt.End()
	cur := tt.Current()
	if cur.Ticks != 1 || cur.MeanTick != us(20) || cur.PhaseMean[PhasePlan] != 0 {
		t.Errorf("second window = %+v, want only the new tick", cur)
	}
}

func TestTickTimerEmpty(t *testing.T) {
	tt := newTestTimer()
	s := tt.Flush()
	if s.Ticks != 0 || s.MeanTick != 0 || s.TicksPerSecond != 0 {
		t.Errorf("empty window = %+v, want zero", s)
	}
	if s.Share(PhaseAct) != 0 {
		t.Errorf("Share on empty window = %v, want 0", s.Share(PhaseAct))
	}
}

func TestTickTimerFrames(t *testing.T) {
	tt := newTestTimer(0, 20*time.Millisecond)
	tt.Frame()
	if fps := tt.Current().FPS; fps != 0 {
		t.Errorf("FPS after one frame = %v, want 0", fps)
	}
	tt.Frame()
	if fps := tt.Current().FPS; fps != 50 {
		t.Errorf("FPS = %v, want 50 with 20ms frames", fps)
	}
}

func TestPerfRow(t *testing.T) {
	s := PerfStats{
		Ticks:    600,
		MeanTick: us(250),
		P90Tick:  us(400),
	}
	s.PhaseMean[PhasePlan] = us(100)
	s.PhaseMean[PhaseAct] = us(50)

	row := s.Row(600)
	if row.WindowEnd != 600 || row.Ticks != 600 || row.MeanTickUS != 250 || row.P90TickUS != 400 {
		t.Errorf("row = %+v", row)
	}
	if row.PlanShare != 0.4 || row.ActShare != 0.2 || row.SpawnShare != 0 {
		t.Errorf("shares = plan %v act %v spawn %v", row.PlanShare, row.ActShare, row.SpawnShare)
	}
}
