// Package simulator fakes live call activity for the dashboard when no
// switch is feeding it.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/iamarketings/Operator/internal/models"
)

type Params struct {
	Interval        time.Duration `yaml:"interval"`
	DropProbability float64       `yaml:"drop_probability"`
	AddProbability  float64       `yaml:"add_probability"`
	UpProbability   float64       `yaml:"up_probability"`
	MaxCalls        int           `yaml:"max_calls"`
	HistoryPoints   int           `yaml:"history_points"`
}

var DefaultParams = Params{
	Interval:        3 * time.Second,
	DropProbability: 0.1,
	AddProbability:  0.4,
	UpProbability:   0.7,
	MaxCalls:        25,
	HistoryPoints:   11,
}

// Validate reports an out-of-range parameter, if any.
func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"drop_probability": p.DropProbability,
		"add_probability":  p.AddProbability,
		"up_probability":   p.UpProbability,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s %v is outside [0,1]", name, v)
		}
	}
	if p.MaxCalls < 0 {
		return fmt.Errorf("max_calls %d is negative", p.MaxCalls)
	}
	if p.HistoryPoints < 0 {
		return fmt.Errorf("history_points %d is negative", p.HistoryPoints)
	}
	return nil
}

// Step computes the next call list from prev. prev is not modified.
func Step(prev []models.Call, rng *rand.Rand, now time.Time, p Params) []models.Call {
	next := make([]models.Call, 0, len(prev)+1)
	for _, c := range prev {
		if rng.Float64() < p.DropProbability {
			continue
		}
		if c.State == models.CallUp {
			c.Duration = int(now.Sub(c.StartTime) / time.Second)
		}
		next = append(next, c)
	}

	if rng.Float64() < p.AddProbability && len(next) < p.MaxCalls {
		next = append(next, newCall(rng, now, p))
	}
	return next
}

func newCall(rng *rand.Rand, now time.Time, p Params) models.Call {
	state := models.CallRinging
	if rng.Float64() < p.UpProbability {
		state = models.CallUp
	}
	return models.Call{
		ID:          fmt.Sprintf("call-%d-%d", now.UnixNano(), rng.Int63()),
		CallerID:    fmt.Sprintf("+1%d%d%d", between(rng, 200, 999), between(rng, 100, 999), between(rng, 1000, 9999)),
		Destination: strconv.Itoa(between(rng, 1000, 1010)),
		StartTime:   now,
		Channel:     fmt.Sprintf("PJSIP/%d-%08x", between(rng, 100, 500), rng.Uint32()),
		State:       state,
	}
}

func between(rng *rand.Rand, lo, hi int) int {
	return rng.Intn(hi-lo+1) + lo
}

// ActivityPoint is one sample of the dashboard activity chart.
type ActivityPoint struct {
	Time  string `json:"time"`
	Calls int    `json:"calls"`
}

// Simulator owns the live call list and the activity series.
type Simulator struct {
	params Params
	rng    *rand.Rand
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	calls    []models.Call
	activity []ActivityPoint

	subMu sync.Mutex
	subs  map[int]chan []models.Call
	next  int
}

func New(p Params, seed int64, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulator{
		params: p,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
		now:    time.Now,
		calls:  []models.Call{},
		subs:   make(map[int]chan []models.Call),
	}
	s.activity = s.seedActivity(s.now())
	return s
}

func (s *Simulator) seedActivity(now time.Time) []ActivityPoint {
	points := make([]ActivityPoint, 0, max(s.params.HistoryPoints, 0))
	for i := s.params.HistoryPoints - 1; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * time.Minute)
		points = append(points, ActivityPoint{Time: at.Format("15:04"), Calls: between(s.rng, 5, 20)})
	}
	return points
}

// Tick advances the simulation by one interval and returns the new calls.
func (s *Simulator) Tick() []models.Call {
	s.mu.Lock()
	now := s.now()
	s.calls = Step(s.calls, s.rng, now, s.params)
	s.activity = append(s.activity, ActivityPoint{Time: now.Format("15:04"), Calls: len(s.calls)})
	if extra := len(s.activity) - max(s.params.HistoryPoints, 0); extra > 0 {
		s.activity = slices.Clone(s.activity[extra:])
	}
	calls := s.calls
	s.mu.Unlock()

	s.publish(calls)
	return calls
}

// Run ticks until ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.params.Interval)
	defer ticker.Stop()
	s.logger.Info("call simulator started", "interval", s.params.Interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("call simulator stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

func (s *Simulator) Calls() []models.Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

func (s *Simulator) Activity() []ActivityPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.activity)
}

// Subscribe delivers the call list after each tick. Slow subscribers miss ticks.
func (s *Simulator) Subscribe(bufSize int) (<-chan []models.Call, func()) {
	ch := make(chan []models.Call, bufSize)
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Simulator) publish(calls []models.Call) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- calls:
		default:
		}
	}
}
