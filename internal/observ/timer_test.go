package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("config")
	tm.End(idx, "dispatchgen.toml")
	tm.Record("build", 3*time.Millisecond, "2 documents")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.Phases[1].Name != "build" || r.Phases[1].DurationMS != 3 {
		t.Fatalf("build phase = %+v", r.Phases[1])
	}
	if r.TotalMS < 3 {
		t.Fatalf("total = %v", r.TotalMS)
	}
	sum := tm.Summary()
	if !strings.HasPrefix(sum, "timings:\n") || !strings.Contains(sum, "// 2 documents") {
		t.Fatalf("summary = %q", sum)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("report = %+v", r)
	}
}
