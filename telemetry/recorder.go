package telemetry

import "log/slog"

// Recorder turns simulation observations into log lines and CSV rows.
// A nil OutputManager disables file output.
type Recorder struct {
	out         *OutputManager
	hof         *HallOfFame
	sampleEvery int32
	logStats    bool
}

// hallOfFameSize is the number of leaders kept per team.
const hallOfFameSize = 10

// NewRecorder creates a recorder writing team and archetype rows every
// sampleEvery ticks.
func NewRecorder(out *OutputManager, sampleEvery int, logStats bool) *Recorder {
	if sampleEvery < 1 {
		sampleEvery = 1
	}
	return &Recorder{
		out:         out,
		hof:         NewHallOfFame(hallOfFameSize),
		sampleEvery: int32(sampleEvery),
		logStats:    logStats,
	}
}

// HallOfFame returns the leaders collected so far.
func (r *Recorder) HallOfFame() *HallOfFame {
	return r.hof
}

// ObserveTick receives the live unit samples of one tick.
func (r *Recorder) ObserveTick(tick int32, samples []UnitSample) {
	if r.out == nil || tick%r.sampleEvery != 0 {
		return
	}
	if err := r.out.WriteTeamStats(ComputeTeamStats(tick, samples)); err != nil {
		slog.Error("failed to write team stats", "error", err)
	}
	if err := r.out.WriteArchetypeStats(ComputeArchetypeStats(tick, samples)); err != nil {
		slog.Error("failed to write archetype stats", "error", err)
	}
}

// ObserveGeneration receives a population evolution.
func (r *Recorder) ObserveGeneration(rec GenerationRecord) {
	if r.logStats {
		slog.Info("generation_saved",
			"team", rec.Team.String(),
			"generation", rec.Generation,
			"tick", rec.Tick,
			"units", len(rec.Genes),
			"leader_fitness", rec.LeaderFitness,
		)
	}
	if err := r.out.WriteGeneration(rec); err != nil {
		slog.Error("failed to write generation", "error", err)
	}
	if r.hof.Consider(rec) {
		if err := r.out.WriteHallOfFame(r.hof); err != nil {
			slog.Error("failed to write hall of fame", "error", err)
		}
	}
}

// ObserveWindow receives a flushed stats window.
func (r *Recorder) ObserveWindow(stats WindowStats, perf PerfStats) {
	if r.logStats {
		stats.LogStats()
		slog.Info("perf", "window_end", stats.WindowEndTick, "perf", perf)
	}
	if err := r.out.WriteWindow(stats); err != nil {
		slog.Error("failed to write window stats", "error", err)
	}
	if err := r.out.WritePerf(perf, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
