package tasks

import "fmt"

// ProgressUpdate represents one transition during a sync session.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase             // What happened
	ItemID  string            // Artist affected, empty for session-wide phases
	Step    int               // Artists resolved so far in this session
	Total   int               // Artists tracked by the orchestrator
	Message string            // Human-readable message for display
	State   ProgressIndicator // Indicator after the transition, zero for session-wide phases
}

// Operation phase enumeration
type Phase int

const (
	SyncStarted Phase = iota
	ItemStarted
	ItemFailed
	ItemCompleted
	ItemDisconnected
	SyncFinished
)

func (p Phase) String() string {
	switch p {
	case SyncStarted:
		return "sync_started"
	case ItemStarted:
		return "item_started"
	case ItemFailed:
		return "item_failed"
	case ItemCompleted:
		return "item_completed"
	case ItemDisconnected:
		return "item_disconnected"
	case SyncFinished:
		return "sync_finished"
	default:
		return ""
	}
}

func syncStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncStarted,
		Total:   total,
		Message: fmt.Sprintf("Syncing %d artists...", total),
	}
}

func itemStartedUpdate(step, total int, p *ProgressIndicator) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ItemStarted,
		ItemID:  p.ID(),
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Syncing %s...", step+1, total, p.ID()),
		State:   p.snapshot(),
	}
}

func itemFailedUpdate(step, total int, p *ProgressIndicator) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ItemFailed,
		ItemID:  p.ID(),
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, p.ID(), p.Message()),
		State:   p.snapshot(),
	}
}

func itemCompletedUpdate(step, total int, p *ProgressIndicator) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ItemCompleted,
		ItemID:  p.ID(),
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, p.ID()),
		State:   p.snapshot(),
	}
}

func itemDisconnectedUpdate(step, total int, p *ProgressIndicator) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ItemDisconnected,
		ItemID:  p.ID(),
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, p.ID(), p.Message()),
		State:   p.snapshot(),
	}
}

func syncFinishedUpdate(res Result, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase: SyncFinished,
		Step:  total,
		Total: total,
		Message: fmt.Sprintf("Sync finished: %d completed, %d failed, %d not synced",
			len(res.Completed), len(res.Failed), len(res.Disconnected)),
	}
}
