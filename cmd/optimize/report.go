package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/arena/traits"
)

// BattleReport is the outcome of one seeded battle.
type BattleReport struct {
	Eval            int     `csv:"eval"`
	Seed            int64   `csv:"seed"`
	Winner          string  `csv:"winner"`
	Ticks           int32   `csv:"ticks"`
	BlueDamage      float64 `csv:"blue_damage"`
	RedDamage       float64 `csv:"red_damage"`
	BlueKills       int     `csv:"blue_kills"`
	RedKills        int     `csv:"red_kills"`
	BlueGenerations int     `csv:"blue_generations"`
	RedGenerations  int     `csv:"red_generations"`
	Score           float64 `csv:"score"`
	Err             string  `csv:"error"`
}

// DamageShare is Blue's fraction of all damage dealt to units and bases.
func (b BattleReport) DamageShare() float64 {
	if b.BlueDamage+b.RedDamage == 0 {
		return 0.5
	}
	return b.BlueDamage / (b.BlueDamage + b.RedDamage)
}

// Wins counts battles won by team.
func (ev Evaluation) Wins(team traits.Team) int {
	n := 0
	for _, b := range ev.Battles {
		if b.Winner == team.String() {
			n++
		}
	}
	return n
}

// WinRate is the fraction of battles Blue won.
func (ev Evaluation) WinRate() float64 {
	if len(ev.Battles) == 0 {
		return 0
	}
	return float64(ev.Wins(traits.Blue)) / float64(len(ev.Battles))
}

// DamageShare is Blue's mean damage share across battles.
func (ev Evaluation) DamageShare() float64 {
	if len(ev.Battles) == 0 {
		return 0.5
	}
	shares := make([]float64, len(ev.Battles))
	for i, b := range ev.Battles {
		shares[i] = b.DamageShare()
	}
	return stat.Mean(shares, nil)
}

// MeanTicks is the mean battle length.
func (ev Evaluation) MeanTicks() float64 {
	if len(ev.Battles) == 0 {
		return 0
	}
	ticks := make([]float64, len(ev.Battles))
	for i, b := range ev.Battles {
		ticks[i] = float64(b.Ticks)
	}
	return stat.Mean(ticks, nil)
}

// CandidateRow is one candidates.csv line.
type CandidateRow struct {
	Eval        int     `csv:"eval"`
	Fitness     float64 `csv:"fitness"`
	BlueWins    int     `csv:"blue_wins"`
	RedWins     int     `csv:"red_wins"`
	Undecided   int     `csv:"undecided"`
	DamageShare float64 `csv:"damage_share"`
	MeanTicks   float64 `csv:"mean_ticks"`
	Params      string  `csv:"params"`
}

func candidateRow(eval int, ev Evaluation, pv *ParamVector) CandidateRow {
	blue, red := ev.Wins(traits.Blue), ev.Wins(traits.Red)
	return CandidateRow{
		Eval:        eval,
		Fitness:     ev.Fitness,
		BlueWins:    blue,
		RedWins:     red,
		Undecided:   len(ev.Battles) - blue - red,
		DamageShare: ev.DamageShare(),
		MeanTicks:   ev.MeanTicks(),
		Params:      formatParams(pv, ev.Params),
	}
}

// formatParams renders values as name=value pairs in parameter order.
func formatParams(pv *ParamVector, values []float64) string {
	parts := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		if spec.Integer {
			parts[i] = fmt.Sprintf("%s=%d", spec.Name, int(values[i]))
		} else {
			parts[i] = fmt.Sprintf("%s=%.4f", spec.Name, values[i])
		}
	}
	return strings.Join(parts, " ")
}

// evalLog appends every evaluation to candidates.csv and battles.csv.
type evalLog struct {
	candidates *os.File
	battles    *os.File
	started    bool
}

func newEvalLog(dir string) (*evalLog, error) {
	candidates, err := os.Create(filepath.Join(dir, "candidates.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating candidates.csv: %w", err)
	}
	battles, err := os.Create(filepath.Join(dir, "battles.csv"))
	if err != nil {
		candidates.Close()
		return nil, fmt.Errorf("creating battles.csv: %w", err)
	}
	return &evalLog{candidates: candidates, battles: battles}, nil
}

func (l *evalLog) write(eval int, ev Evaluation, pv *ParamVector) error {
	battles := make([]BattleReport, len(ev.Battles))
	for i, b := range ev.Battles {
		b.Eval = eval
		battles[i] = b
	}
	rows := []CandidateRow{candidateRow(eval, ev, pv)}

	marshal := gocsv.MarshalWithoutHeaders
	if !l.started {
		marshal = gocsv.Marshal
		l.started = true
	}
	if err := marshal(rows, l.candidates); err != nil {
		return fmt.Errorf("writing candidates.csv: %w", err)
	}
	if err := marshal(battles, l.battles); err != nil {
		return fmt.Errorf("writing battles.csv: %w", err)
	}
	return nil
}

func (l *evalLog) Close() error {
	err := l.candidates.Close()
	if berr := l.battles.Close(); err == nil {
		err = berr
	}
	return err
}

// printBreakdown writes a per-battle table for one evaluation.
func printBreakdown(w io.Writer, ev Evaluation) {
	fmt.Fprintf(w, "  %-8s %-6s %7s %10s %10s %6s %6s %9s\n",
		"seed", "winner", "ticks", "blue_dmg", "red_dmg", "b_kill", "r_kill", "gens b/r")
	for _, b := range ev.Battles {
		if b.Err != "" {
			fmt.Fprintf(w, "  %-8d error: %s\n", b.Seed, b.Err)
			continue
		}
		fmt.Fprintf(w, "  %-8d %-6s %7d %10.1f %10.1f %6d %6d %4d/%-4d\n",
			b.Seed, b.Winner, b.Ticks, b.BlueDamage, b.RedDamage,
			b.BlueKills, b.RedKills, b.BlueGenerations, b.RedGenerations)
	}
}
