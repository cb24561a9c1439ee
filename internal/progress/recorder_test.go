package progress

import (
	"sync"
	"testing"
)

func TestRecorder_Order(t *testing.T) {
	rec := NewRecorder()
	rec.Record("first")
	rec.Record("second %d", 2)

	steps := rec.Steps()
	if len(steps) != 2 {
		t.Fatalf("Steps() returned %d entries, want 2", len(steps))
	}
	if steps[0].Message != "first" || steps[1].Message != "second 2" {
		t.Errorf("steps = %q, %q", steps[0].Message, steps[1].Message)
	}
}

func TestRecorder_NilSafe(t *testing.T) {
	var rec *Recorder
	rec.Record("ignored")
	if steps := rec.Steps(); steps != nil {
		t.Errorf("nil recorder Steps() = %v, want nil", steps)
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	rec := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Record("step %d", i)
		}()
	}
	wg.Wait()

	if got := len(rec.Steps()); got != 50 {
		t.Errorf("Steps() returned %d entries, want 50", got)
	}
}

func TestRecorder_StepsReturnsCopy(t *testing.T) {
	rec := NewRecorder()
	rec.Record("only")

	steps := rec.Steps()
	steps[0].Message = "mutated"

	if rec.Steps()[0].Message != "only" {
		t.Error("Steps() must return a copy")
	}
}
