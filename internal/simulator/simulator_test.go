package simulator

import (
	"io"
	"log/slog"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/iamarketings/Operator/internal/models"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestStepIsDeterministicForSeed(t *testing.T) {
	t.Parallel()

	run := func() []models.Call {
		rng := rand.New(rand.NewSource(99))
		var calls []models.Call
		for i := 0; i < 50; i++ {
			calls = Step(calls, rng, t0.Add(time.Duration(i)*3*time.Second), DefaultParams)
		}
		return calls
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different call lists")
	}
}

func TestStepRespectsCapAndStates(t *testing.T) {
	t.Parallel()

	p := DefaultParams
	p.DropProbability = 0
	p.AddProbability = 1
	rng := rand.New(rand.NewSource(1))

	var calls []models.Call
	for i := 0; i < 100; i++ {
		calls = Step(calls, rng, t0.Add(time.Duration(i)*time.Second), p)
		if len(calls) > p.MaxCalls {
			t.Fatalf("tick %d: %d calls exceeds cap %d", i, len(calls), p.MaxCalls)
		}
	}
	if len(calls) != p.MaxCalls {
		t.Fatalf("got %d calls, want %d", len(calls), p.MaxCalls)
	}

	ids := make(map[string]bool)
	for _, c := range calls {
		if c.State != models.CallUp && c.State != models.CallRinging {
			t.Errorf("unexpected state %q", c.State)
		}
		if ids[c.ID] {
			t.Errorf("duplicate id %s", c.ID)
		}
		ids[c.ID] = true
	}
}

func TestStepDropsAllWithCertainty(t *testing.T) {
	t.Parallel()

	p := DefaultParams
	p.DropProbability = 1
	p.AddProbability = 0
	prev := []models.Call{{ID: "a"}, {ID: "b"}}

	next := Step(prev, rand.New(rand.NewSource(1)), t0, p)
	if len(next) != 0 {
		t.Fatalf("got %d calls, want 0", len(next))
	}
	if len(prev) != 2 || prev[0].ID != "a" {
		t.Fatal("prev was modified")
	}
}

func TestStepRefreshesDuration(t *testing.T) {
	t.Parallel()

	p := DefaultParams
	p.DropProbability = 0
	p.AddProbability = 0
	prev := []models.Call{
		{ID: "up", State: models.CallUp, StartTime: t0},
		{ID: "ring", State: models.CallRinging, StartTime: t0},
	}

	next := Step(prev, rand.New(rand.NewSource(1)), t0.Add(42*time.Second), p)
	if next[0].Duration != 42 || next[1].Duration != 0 {
		t.Fatalf("durations = %d/%d, want 42/0", next[0].Duration, next[1].Duration)
	}
}

func TestTickKeepsActivityWindow(t *testing.T) {
	t.Parallel()

	s := New(DefaultParams, 5, slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := t0
	s.now = func() time.Time { return clock }

	ch, unsub := s.Subscribe(1)
	defer unsub()

	if len(s.Activity()) != DefaultParams.HistoryPoints {
		t.Fatalf("seeded %d points, want %d", len(s.Activity()), DefaultParams.HistoryPoints)
	}
	for i := 0; i < 30; i++ {
		clock = clock.Add(time.Minute)
		s.Tick()
	}

	act := s.Activity()
	if len(act) != DefaultParams.HistoryPoints {
		t.Fatalf("got %d points, want %d", len(act), DefaultParams.HistoryPoints)
	}
	last := act[len(act)-1]
	if last.Time != clock.Format("15:04") || last.Calls != len(s.Calls()) {
		t.Fatalf("last point %+v, calls %d", last, len(s.Calls()))
	}

	select {
	case <-ch:
	default:
		t.Fatal("no tick published")
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	exts := []models.Extension{
		{Status: models.ExtensionRegistered},
		{Status: models.ExtensionRegistered},
		{Status: models.ExtensionUnavailable},
	}
	trunks := []models.Trunk{{Status: models.TrunkRegistered}, {Status: models.TrunkUnreachable}}
	got := ComputeStats(exts, trunks, []models.Call{{ID: "c"}})

	want := Stats{ActiveCalls: 1, RegisteredExtensions: 2, TotalExtensions: 3, RegisteredTrunks: 1, TotalTrunks: 2, ActiveConferences: 2}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNewToleratesNegativeHistory(t *testing.T) {
	t.Parallel()

	p := DefaultParams
	p.HistoryPoints = -3
	if err := p.Validate(); err == nil {
		t.Error("expected Validate to reject negative history_points")
	}
	s := New(p, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Tick()
	if got := s.Activity(); len(got) != 0 {
		t.Errorf("activity = %v, want empty", got)
	}
}
