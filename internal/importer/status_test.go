package importer

import "testing"

func TestTrackerPercentOnlyMovesForward(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.StartRun("/music", false)

	tracker.SetPercent(40)
	tracker.SetPercent(25)
	if got := tracker.Snapshot().Percent; got != 40 {
		t.Fatalf("expected progress to hold at 40, got %d", got)
	}

	tracker.SetPercent(90)
	if got := tracker.Snapshot().Percent; got != 90 {
		t.Fatalf("expected progress to advance to 90, got %d", got)
	}
}

func TestTrackerFinishRunResetsToIdle(t *testing.T) {
	t.Parallel()

	var events []Status
	tracker := NewTracker()
	tracker.SetEmitter(func(event string, payload any) {
		if event != EventStatus {
			return
		}
		if status, ok := payload.(Status); ok {
			events = append(events, status)
		}
	})

	tracker.StartRun("/music", true)
	tracker.AddTotal(3)
	tracker.AddImported(3)
	tracker.FinishRun()

	final := tracker.Snapshot()
	if final != (Status{}) {
		t.Fatalf("expected idle status after finish, got %+v", final)
	}

	// FinishRun publishes a terminal 100% snapshot before the reset.
	if len(events) < 2 {
		t.Fatalf("expected terminal and reset events, got %d", len(events))
	}
	terminal := events[len(events)-2]
	if terminal.Percent != 100 || terminal.IsImporting {
		t.Fatalf("expected terminal 100%% snapshot, got %+v", terminal)
	}
}

func TestTrackerStartRunClearsPreviousCounters(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.StartRun("/old", false)
	tracker.AddTotal(10)
	tracker.AddImported(4)
	tracker.SetPercent(70)

	tracker.StartRun("/new", true)

	status := tracker.Snapshot()
	if status.TotalTracks != 0 || status.ImportedTracks != 0 || status.Percent != 0 {
		t.Fatalf("expected counters cleared on new run, got %+v", status)
	}
	if status.CurrentFolder != "/new" || !status.BackgroundImport {
		t.Fatalf("expected new run parameters, got %+v", status)
	}
	if status.Status != PhaseReading {
		t.Fatalf("expected reading phase, got %q", status.Status)
	}
}
