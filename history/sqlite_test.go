// ABOUTME: Tests for the SQLite run history: record, list ordering, get, events, and delete.
// ABOUTME: Each test uses a fresh database under t.TempDir().
package history

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/2389-research/ducksort/sorting"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func finishedRun(t *testing.T, values []int) (Run, []sorting.Event) {
	t.Helper()
	bs := sorting.NewBubbleSort(values)
	start := time.Now()
	for {
		worked, err := bs.Step()
		if err != nil {
			t.Fatal(err)
		}
		if !worked {
			break
		}
	}
	return Run{
		RunID:       NewRunID(),
		Scenario:    "test",
		Initial:     bs.Initial(),
		Final:       bs.Values(),
		Comparisons: bs.Comparisons(),
		Swaps:       bs.Swaps(),
		Steps:       bs.Comparisons() + len(values) - 2,
		Speed:       1.5,
		Completed:   true,
		StartedAt:   start,
		FinishedAt:  start.Add(3 * time.Second),
	}, bs.History()
}

func TestRecordAndGetRun(t *testing.T) {
	s := openTestStore(t)
	run, events := finishedRun(t, []int{5, 2, 8, 1})
	if err := s.RecordRun(run, events); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, err := s.GetRun(run.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.RunID != run.RunID || !slices.Equal(got.Initial, []int{5, 2, 8, 1}) || !slices.Equal(got.Final, []int{1, 2, 5, 8}) {
		t.Errorf("run = %+v", got)
	}
	if got.Comparisons != 6 || got.Swaps != 4 || got.Speed != 1.5 || !got.Completed {
		t.Errorf("counters = %+v", got)
	}
	if d := got.Duration(); d < 2999*time.Millisecond || d > 3001*time.Millisecond {
		t.Errorf("Duration = %v, want 3s", d)
	}

	evs, err := s.Events(run.RunID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(evs) != len(events) {
		t.Fatalf("len(events) = %d, want %d", len(evs), len(events))
	}
	for i := range evs {
		if evs[i].ID != events[i].ID || evs[i].Seq != events[i].Seq ||
			evs[i].Payload.EventPayloadType() != events[i].Payload.EventPayloadType() {
			t.Errorf("event %d = %+v, want %+v", i, evs[i], events[i])
		}
	}
	if _, ok := evs[len(evs)-1].Payload.(sorting.CompleteEvent); !ok {
		t.Errorf("last event = %T, want CompleteEvent", evs[len(evs)-1].Payload)
	}
}

func TestRecordRunUpserts(t *testing.T) {
	s := openTestStore(t)
	run, events := finishedRun(t, []int{2, 1})
	partial := run
	partial.Completed = false
	if err := s.RecordRun(partial, events[:1]); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(run, events); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetRun(run.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Completed {
		t.Error("upsert did not update completed")
	}
	evs, _ := s.Events(run.RunID)
	if len(evs) != len(events) {
		t.Errorf("len(events) = %d, want %d", len(evs), len(events))
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	var ids []string
	for i := 0; i < 3; i++ {
		run, events := finishedRun(t, []int{3, 2, 1})
		ids = append(ids, run.RunID.String())
		if err := s.RecordRun(run, events); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond) // distinct ULID timestamps
	}
	runs, err := s.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len = %d, want 3", len(runs))
	}
	if runs[0].RunID.String() != ids[2] || runs[2].RunID.String() != ids[0] {
		t.Errorf("order = %v, want newest first", []string{runs[0].RunID.String(), runs[1].RunID.String(), runs[2].RunID.String()})
	}
	limited, err := s.ListRuns(2)
	if err != nil || len(limited) != 2 {
		t.Errorf("ListRuns(2) = %d runs, err %v", len(limited), err)
	}
}

func TestGetAndDeleteMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetRun(NewRunID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteRun(NewRunID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteRun err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRunRemovesEvents(t *testing.T) {
	s := openTestStore(t)
	run, events := finishedRun(t, []int{2, 1})
	if err := s.RecordRun(run, events); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteRun(run.RunID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	evs, err := s.Events(run.RunID)
	if err != nil || len(evs) != 0 {
		t.Errorf("events after delete = %d, err %v", len(evs), err)
	}
}
