package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iamarketings/Operator/internal/apiclient"
	"github.com/iamarketings/Operator/internal/models"
	"github.com/iamarketings/Operator/internal/sample"
)

var errDown = errors.New("connection refused")

// fakeRemote answers from canned JSON-able values and fails every call on
// the collections listed in down.
type fakeRemote struct {
	mu      sync.Mutex
	lists   map[string]any
	created map[string]any
	down    map[string]bool
	calls   []string
}

func (f *fakeRemote) record(op, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+" "+collection)
	if f.down[collection] {
		return errDown
	}
	return nil
}

func (f *fakeRemote) List(_ context.Context, collection string, out any) error {
	if err := f.record("GET", collection); err != nil {
		return err
	}
	return roundTrip(f.lists[collection], out)
}

func (f *fakeRemote) Create(_ context.Context, collection string, _ any, out any) error {
	if err := f.record("POST", collection); err != nil {
		return err
	}
	return roundTrip(f.created[collection], out)
}

func (f *fakeRemote) Update(_ context.Context, collection, _ string, _ any) error {
	return f.record("PUT", collection)
}

func (f *fakeRemote) Delete(_ context.Context, collection, _ string) error {
	return f.record("DELETE", collection)
}

func roundTrip(in, out any) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, out)
}

func allDown() *fakeRemote {
	return &fakeRemote{down: map[string]bool{
		apiclient.Extensions: true,
		apiclient.Trunks:     true,
		apiclient.Queues:     true,
		apiclient.CDR:        true,
	}}
}

func seed() sample.Dataset {
	return sample.New(7).Dataset(sample.DefaultSizes, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}

func quietStore(r Remote, ds sample.Dataset, opts ...Option) *Store {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(r, ds, opts...)
}

func backendDataset() map[string]any {
	return map[string]any{
		apiclient.Extensions: []models.Extension{{ID: "ext-srv", Number: "500", Name: "Server", Status: models.ExtensionRegistered}},
		apiclient.Trunks:     []models.Trunk{{ID: "trunk-srv", Name: "Carrier", Type: models.TrunkSIP, Status: models.TrunkRegistered}},
		apiclient.Queues:     []models.Queue{{ID: "queue-srv", Name: "Helpdesk", Strategy: models.StrategyRandom, Members: []models.QueueMember{}}},
		apiclient.CDR:        []models.CDR{{ID: "cdr-srv", CallDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Disposition: models.DispositionBusy}},
	}
}

func TestLoadWithoutBackendKeepsSample(t *testing.T) {
	t.Parallel()

	ds := seed()
	s := quietStore(allDown(), ds)
	report := s.Load(context.Background())

	if report.OK() {
		t.Fatal("report should carry failures")
	}
	if !reflect.DeepEqual(s.Extensions(), ds.Extensions) ||
		!reflect.DeepEqual(s.Trunks(), ds.Trunks) ||
		!reflect.DeepEqual(s.Queues(), ds.Queues) ||
		!reflect.DeepEqual(s.CDRs(), ds.CDRs) {
		t.Fatal("collections changed after failed load")
	}
	if got := []int{len(s.Extensions()), len(s.Trunks()), len(s.Queues()), len(s.CDRs())}; !reflect.DeepEqual(got, []int{20, 4, 2, 100}) {
		t.Fatalf("sizes = %v, want [20 4 2 100]", got)
	}

	res := s.AddTrunk(context.Background(), models.NewTrunk{Name: "Carrier C", Type: models.TrunkSIP, Host: "sip.c.example"})
	if !res.Fallback() || res.Value.Status != models.TrunkUnregistered || !strings.HasPrefix(res.Value.ID, "trunk-") {
		t.Fatalf("unexpected fallback trunk %+v", res)
	}
}

func TestLoadReplacesEveryCollection(t *testing.T) {
	t.Parallel()

	backend := backendDataset()
	s := quietStore(&fakeRemote{lists: backend}, seed())
	if report := s.Load(context.Background()); !report.OK() {
		t.Fatalf("unexpected failures: %+v", report)
	}

	if !reflect.DeepEqual(s.Extensions(), backend[apiclient.Extensions]) ||
		!reflect.DeepEqual(s.Trunks(), backend[apiclient.Trunks]) ||
		!reflect.DeepEqual(s.Queues(), backend[apiclient.Queues]) ||
		!reflect.DeepEqual(s.CDRs(), backend[apiclient.CDR]) {
		t.Fatal("collections do not match backend")
	}
}

func TestLoadCollectionsAreIndependent(t *testing.T) {
	t.Parallel()

	collections := []string{apiclient.Extensions, apiclient.Trunks, apiclient.Queues, apiclient.CDR}
	for _, failing := range collections {
		failing := failing
		t.Run(failing, func(t *testing.T) {
			t.Parallel()

			ds := seed()
			backend := backendDataset()
			s := quietStore(&fakeRemote{lists: backend, down: map[string]bool{failing: true}}, ds)
			report := s.Load(context.Background())

			got := map[string]any{
				apiclient.Extensions: s.Extensions(),
				apiclient.Trunks:     s.Trunks(),
				apiclient.Queues:     s.Queues(),
				apiclient.CDR:        s.CDRs(),
			}
			kept := map[string]any{
				apiclient.Extensions: ds.Extensions,
				apiclient.Trunks:     ds.Trunks,
				apiclient.Queues:     ds.Queues,
				apiclient.CDR:        ds.CDRs,
			}
			errs := map[string]error{
				apiclient.Extensions: report.Extensions,
				apiclient.Trunks:     report.Trunks,
				apiclient.Queues:     report.Queues,
				apiclient.CDR:        report.CDRs,
			}

			for _, c := range collections {
				want := backend[c]
				if c == failing {
					want = kept[c]
					if !errors.Is(errs[c], errDown) {
						t.Errorf("%s: report error = %v, want errDown", c, errs[c])
					}
				} else if errs[c] != nil {
					t.Errorf("%s: unexpected error %v", c, errs[c])
				}
				if !reflect.DeepEqual(got[c], want) {
					t.Errorf("%s: got %+v", c, got[c])
				}
			}
		})
	}
}

func TestLoadRejectsNullBody(t *testing.T) {
	t.Parallel()

	ds := seed()
	s := quietStore(&fakeRemote{lists: map[string]any{}}, ds)
	report := s.Load(context.Background())
	if !errors.Is(report.Trunks, errNullCollection) {
		t.Fatalf("trunks error = %v, want errNullCollection", report.Trunks)
	}
	if !reflect.DeepEqual(s.Trunks(), ds.Trunks) {
		t.Fatal("null body replaced trunks")
	}
}

func TestStartDeliversReport(t *testing.T) {
	t.Parallel()

	s := quietStore(&fakeRemote{lists: backendDataset()}, seed())
	if len(s.Extensions()) != 20 {
		t.Fatalf("seed not available before load: %d extensions", len(s.Extensions()))
	}

	select {
	case report, ok := <-s.Start(context.Background()):
		if !ok || !report.OK() {
			t.Fatalf("report = %+v, ok = %v", report, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for load")
	}
	if len(s.Extensions()) != 1 {
		t.Fatalf("got %d extensions after load, want 1", len(s.Extensions()))
	}
}

func TestMutationsFallBackLocally(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := quietStore(allDown(), seed())

	ext := s.AddExtension(ctx, models.NewExtension{Number: "3000", Name: "Operator", Secret: "s3cret", Protocol: models.ProtocolPJSIP})
	if !ext.Fallback() || !errors.Is(ext.Err, errDown) {
		t.Fatalf("add extension result %+v", ext)
	}
	if ext.Value.Status != models.ExtensionUnregistered || ext.Value.IPAddress != models.NotApplicable || ext.Value.UserAgent != models.NotApplicable {
		t.Fatalf("server fields not defaulted: %+v", ext.Value)
	}
	if got, ok := s.Extension(ext.Value.ID); !ok || got != ext.Value {
		t.Fatalf("extension not stored: %+v", got)
	}

	changed := ext.Value
	changed.Name = "Operator Desk"
	changed.Voicemail.Enabled = true
	if res := s.UpdateExtension(ctx, changed); !res.Fallback() || res.Value != changed {
		t.Fatalf("update result %+v", res)
	}
	if got, _ := s.Extension(changed.ID); got != changed {
		t.Fatalf("update not applied: %+v", got)
	}

	if res := s.RemoveExtension(ctx, changed.ID); !res.Fallback() || res.Value != changed.ID {
		t.Fatalf("remove result %+v", res)
	}
	if _, ok := s.Extension(changed.ID); ok {
		t.Fatal("extension still present after remove")
	}
	if len(s.Extensions()) != 20 {
		t.Fatalf("got %d extensions, want 20", len(s.Extensions()))
	}

	q := s.AddQueue(ctx, models.NewQueue{Name: "Night", Strategy: models.StrategyLeastRecent})
	if !q.Fallback() || q.Value.WaitingCalls != 0 || !strings.HasPrefix(q.Value.ID, "queue-") {
		t.Fatalf("add queue result %+v", q)
	}
	if res := s.RemoveQueue(ctx, q.Value.ID); !res.Fallback() {
		t.Fatalf("remove queue result %+v", res)
	}
	if _, ok := s.Queue(q.Value.ID); ok {
		t.Fatal("queue still present")
	}
}

func TestUpdateTrunkFallbackKeepsCallerEntity(t *testing.T) {
	t.Parallel()

	s := quietStore(allDown(), seed())
	in := models.Trunk{ID: "trunk-3", Name: "Liaison Lyon", Type: models.TrunkPJSIP, Status: models.TrunkRegistered, Host: "10.0.0.1"}
	res := s.UpdateTrunk(context.Background(), in)
	if !res.Fallback() || res.Value != in {
		t.Fatalf("result %+v", res)
	}
	got, ok := s.Trunk("trunk-3")
	if !ok || got != in {
		t.Fatalf("stored trunk %+v, want %+v", got, in)
	}
	if len(s.Trunks()) != 4 {
		t.Fatalf("got %d trunks, want 4", len(s.Trunks()))
	}
}

func TestAddFallbackIDsAreUnique(t *testing.T) {
	t.Parallel()

	s := quietStore(allDown(), sample.Dataset{})
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddTrunk(context.Background(), models.NewTrunk{Name: fmt.Sprintf("t%d", i)})
		}(i)
	}
	wg.Wait()

	trunks := s.Trunks()
	if len(trunks) != 200 {
		t.Fatalf("got %d trunks, want 200", len(trunks))
	}
	seen := make(map[string]bool, len(trunks))
	for _, tr := range trunks {
		if seen[tr.ID] {
			t.Fatalf("duplicate id %s", tr.ID)
		}
		seen[tr.ID] = true
	}
}

func TestAddUsesServerRepresentation(t *testing.T) {
	t.Parallel()

	server := models.Extension{ID: "ext-77", Number: "4000", Name: "Desk", Status: models.ExtensionRegistered, IPAddress: "10.1.1.1", UserAgent: "Linphone"}
	remote := &fakeRemote{created: map[string]any{apiclient.Extensions: server}}
	s := quietStore(remote, sample.Dataset{})

	res := s.AddExtension(context.Background(), models.NewExtension{Number: "4000", Name: "Desk"})
	if res.Source != SourceRemote || res.Err != nil || res.Value != server {
		t.Fatalf("result %+v", res)
	}
	if got := s.Extensions(); len(got) != 1 || got[0] != server {
		t.Fatalf("collection %+v", got)
	}
}

func TestAddReplacesEntityWithSameID(t *testing.T) {
	t.Parallel()

	// The trunk list is not served, so the sample trunks stay and the
	// backend then hands out an id the sample already uses.
	server := models.Trunk{ID: "trunk-1", Name: "Carrier", Type: models.TrunkSIP, Status: models.TrunkRegistered, Host: "sip.example"}
	remote := &fakeRemote{created: map[string]any{apiclient.Trunks: server}}
	s := quietStore(remote, seed())
	if report := s.Load(context.Background()); report.Trunks == nil {
		t.Fatal("expected the trunk load to fail")
	}

	res := s.AddTrunk(context.Background(), models.NewTrunk{Name: "Carrier", Type: models.TrunkSIP, Host: "sip.example"})
	if res.Source != SourceRemote || res.Value.ID != "trunk-1" {
		t.Fatalf("result %+v", res)
	}

	trunks := s.Trunks()
	count := 0
	for _, tr := range trunks {
		if tr.ID == "trunk-1" {
			count++
			if tr != server {
				t.Errorf("trunk-1 = %+v, want the server copy", tr)
			}
		}
	}
	if count != 1 || len(trunks) != len(seed().Trunks) {
		t.Fatalf("trunk-1 appears %d times in %d trunks", count, len(trunks))
	}
}

func TestAddFallsBackWhenServerOmitsID(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{created: map[string]any{apiclient.Trunks: map[string]string{"name": "x"}}}
	s := quietStore(remote, sample.Dataset{}, WithIDFunc(func() string { return "fixed" }))

	res := s.AddTrunk(context.Background(), models.NewTrunk{Name: "x"})
	if !res.Fallback() || res.Value.ID != "trunk-fixed" || !errors.Is(res.Err, errMissingID) {
		t.Fatalf("result %+v", res)
	}
}

func TestToggleQueueMemberIsSetMembership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := seed()
	s := quietStore(allDown(), ds)
	ext := ds.Extensions[10]

	before, _ := s.Queue("q-1")
	res, ok := s.ToggleQueueMember(ctx, "q-1", ext)
	if !ok || !res.Value.HasMember(ext.ID) {
		t.Fatalf("first toggle %+v ok=%v", res, ok)
	}
	if _, ok := s.ToggleQueueMember(ctx, "q-1", ext); !ok {
		t.Fatal("second toggle lost the queue")
	}
	after, _ := s.Queue("q-1")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("members after two toggles %+v, want %+v", after.Members, before.Members)
	}

	if _, ok := s.ToggleQueueMember(ctx, "missing", ext); ok {
		t.Fatal("toggle on unknown queue reported ok")
	}
}

func TestSnapshotsAreNotRewritten(t *testing.T) {
	t.Parallel()

	s := quietStore(allDown(), seed())
	old := s.Trunks()
	first := old[0]

	s.UpdateTrunk(context.Background(), models.Trunk{ID: first.ID, Name: "renamed"})
	s.RemoveTrunk(context.Background(), old[1].ID)
	_ = append(s.Trunks(), models.Trunk{ID: "appended"})

	if old[0] != first || len(old) != 4 {
		t.Fatal("earlier snapshot was modified")
	}
	if got := s.Trunks(); len(got) != 3 || got[0].Name != "renamed" {
		t.Fatalf("current snapshot %+v", got)
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	t.Parallel()

	s := quietStore(allDown(), seed())
	ch, unsub := s.Subscribe(4)
	defer unsub()

	s.RemoveQueue(context.Background(), "q-2")
	select {
	case c := <-ch:
		if c.Collection != apiclient.Queues || c.Version != 1 {
			t.Fatalf("change %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("no change published")
	}
}
