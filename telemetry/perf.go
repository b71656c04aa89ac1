package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of the simulation step.
type Phase uint8

const (
	PhaseSpawn Phase = iota
	PhasePlan
	PhaseAct
	PhaseCleanup
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{"spawn", "plan", "act", "cleanup", "telemetry"}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// Phases returns every phase in step order.
func Phases() []Phase {
	out := make([]Phase, NumPhases)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// TickTimer splits each tick's wall time across phases and aggregates
// the ticks of one stats window. The window closes on Flush, alongside the
// event collector.
type TickTimer struct {
	now func() time.Time

	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inTick     bool

	tickMicros []float64
	phaseSum   [NumPhases]time.Duration
	last       PerfStats

	lastFrame time.Time
	frame     time.Duration
}

// NewTickTimer creates a timer on the wall clock.
func NewTickTimer() *TickTimer {
	return &TickTimer{now: time.Now}
}

// Begin starts a tick.
func (t *TickTimer) Begin() {
	t.tickStart = t.now()
	t.inTick = false
}

// Enter closes the running phase, if any, and starts p.
func (t *TickTimer) Enter(p Phase) {
	now := t.now()
	if t.inTick {
		t.phaseSum[t.phase] += now.Sub(t.phaseStart)
	}
	t.phase = p
	t.phaseStart = now
	t.inTick = true
}

// End closes the tick and adds it to the window.
func (t *TickTimer) End() {
	now := t.now()
	if t.inTick {
		t.phaseSum[t.phase] += now.Sub(t.phaseStart)
		t.inTick = false
	}
	t.tickMicros = append(t.tickMicros, float64(now.Sub(t.tickStart))/float64(time.Microsecond))
}

// Frame marks a rendered frame.
func (t *TickTimer) Frame() {
	now := t.now()
	if !t.lastFrame.IsZero() {
		t.frame = now.Sub(t.lastFrame)
	}
	t.lastFrame = now
}

// Flush returns the window's stats and starts a new window.
func (t *TickTimer) Flush() PerfStats {
	s := t.window()
	t.last = s
	t.tickMicros = t.tickMicros[:0]
	t.phaseSum = [NumPhases]time.Duration{}
	return s
}

// Current returns stats for the open window, or the last closed window
// while the open one has no ticks yet.
func (t *TickTimer) Current() PerfStats {
	if len(t.tickMicros) == 0 {
		s := t.last
		s.FPS = t.fps()
		return s
	}
	return t.window()
}

func (t *TickTimer) window() PerfStats {
	s := PerfStats{Ticks: len(t.tickMicros), FPS: t.fps()}
	if s.Ticks == 0 {
		return s
	}

	sum := Summarize(t.tickMicros)
	s.MeanTick = micros(sum.Mean)
	s.P90Tick = micros(sum.P90)
	for _, v := range t.tickMicros {
		s.MaxTick = max(s.MaxTick, micros(v))
	}
	for p := range t.phaseSum {
		s.PhaseMean[p] = t.phaseSum[p] / time.Duration(s.Ticks)
	}
	if sum.Mean > 0 {
		s.TicksPerSecond = 1e6 / sum.Mean
	}
	return s
}

func (t *TickTimer) fps() float64 {
	if t.frame <= 0 {
		return 0
	}
	return float64(time.Second) / float64(t.frame)
}

func micros(v float64) time.Duration {
	return time.Duration(v * float64(time.Microsecond))
}

// PerfStats is the tick timing of one window.
type PerfStats struct {
	Ticks          int
	MeanTick       time.Duration
	P90Tick        time.Duration
	MaxTick        time.Duration
	PhaseMean      [NumPhases]time.Duration
	TicksPerSecond float64
	FPS            float64
}

// Share returns the fraction of the mean tick spent in p.
func (s PerfStats) Share(p Phase) float64 {
	if s.MeanTick <= 0 {
		return 0
	}
	return float64(s.PhaseMean[p]) / float64(s.MeanTick)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("mean_tick_us", s.MeanTick.Microseconds()),
		slog.Int64("p90_tick_us", s.P90Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, p := range Phases() {
		attrs = append(attrs, slog.Float64(p.String()+"_share", s.Share(p)))
	}
	return slog.GroupValue(attrs...)
}

// PerfRow is one perf.csv line.
type PerfRow struct {
	WindowEnd      int32   `csv:"window_end"`
	Ticks          int     `csv:"ticks"`
	MeanTickUS     int64   `csv:"mean_tick_us"`
	P90TickUS      int64   `csv:"p90_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	SpawnShare     float64 `csv:"spawn_share"`
	PlanShare      float64 `csv:"plan_share"`
	ActShare       float64 `csv:"act_share"`
	CleanupShare   float64 `csv:"cleanup_share"`
	TelemetryShare float64 `csv:"telemetry_share"`
}

// Row flattens the stats for perf.csv.
func (s PerfStats) Row(windowEnd int32) PerfRow {
	return PerfRow{
		WindowEnd:      windowEnd,
		Ticks:          s.Ticks,
		MeanTickUS:     s.MeanTick.Microseconds(),
		P90TickUS:      s.P90Tick.Microseconds(),
		MaxTickUS:      s.MaxTick.Microseconds(),
		SpawnShare:     s.Share(PhaseSpawn),
		PlanShare:      s.Share(PhasePlan),
		ActShare:       s.Share(PhaseAct),
		CleanupShare:   s.Share(PhaseCleanup),
		TelemetryShare: s.Share(PhaseTelemetry),
	}
}
