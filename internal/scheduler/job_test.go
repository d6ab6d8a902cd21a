package scheduler

import (
	"fmt"
	"testing"
	"time"
)

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}

	if h.Latest() != nil {
		t.Error("empty history must have no latest result")
	}

	for i := 0; i < historyLimit+20; i++ {
		h.Add(JobResult{
			JobName:   "signal_scan",
			StartTime: time.Now(),
			Success:   false,
			Error:     fmt.Sprintf("run %d", i),
		})
	}

	if len(h.Results) != historyLimit {
		t.Errorf("history length = %d, want %d", len(h.Results), historyLimit)
	}

	latest := h.Latest()
	if latest == nil {
		t.Fatal("expected a latest result")
	}
	if latest.Error != fmt.Sprintf("run %d", historyLimit+19) {
		t.Errorf("latest = %q, want the most recent run", latest.Error)
	}
}
