// internal/api/job/store_test.go
package job

import (
	"errors"
	"testing"
	"time"

	"github.com/mfaber/hindsight/internal/core"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(100, time.Hour)

	job := store.Create("backtest")
	if job.ID == "" {
		t.Error("expected job ID")
	}
	if job.Status != StatusPending {
		t.Errorf("expected pending, got %s", job.Status)
	}

	retrieved, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.ID != job.ID {
		t.Error("IDs don't match")
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(100, time.Hour)
	job := store.Create("backtest")

	err := store.Update(job.ID, func(j *Job) {
		j.Status = StatusComplete
		j.Result = map[string]any{"strategy_return": 1.5}
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, _ := store.Get(job.ID)
	if retrieved.Status != StatusComplete {
		t.Errorf("expected complete, got %s", retrieved.Status)
	}
	if retrieved.Result == nil {
		t.Error("expected result payload")
	}
}

func TestStore_MaxSize(t *testing.T) {
	store := NewStore(2, time.Hour)

	job1 := store.Create("backtest")
	store.Create("backtest")
	store.Create("backtest") // evicts job1

	if _, err := store.Get(job1.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected job1 evicted with ErrNotFound, got %v", err)
	}
}

func TestStore_TTLEviction(t *testing.T) {
	store := NewStore(100, 10*time.Millisecond)

	job := store.Create("search")
	time.Sleep(20 * time.Millisecond)

	if _, err := store.Get(job.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected expired job to report ErrNotFound, got %v", err)
	}

	// Creating evicts expired entries, so capacity is not consumed by
	// dead jobs.
	store.Create("search")
	if got := len(store.List()); got != 1 {
		t.Errorf("expected 1 live job, got %d", got)
	}
}

func TestStore_NotFound(t *testing.T) {
	store := NewStore(100, time.Hour)

	if _, err := store.Get("nonexistent"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Update("nonexistent", func(*Job) {}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}
}

func TestStore_Active(t *testing.T) {
	store := NewStore(100, time.Hour)

	a := store.Create("backtest")
	store.Create("backtest")
	store.Create("search")

	store.Update(a.ID, func(j *Job) { j.Status = StatusComplete })

	if got := store.Active("backtest"); got != 1 {
		t.Errorf("expected 1 active backtest job, got %d", got)
	}
	if got := store.Active("search"); got != 1 {
		t.Errorf("expected 1 active search job, got %d", got)
	}
}

func TestStore_List(t *testing.T) {
	store := NewStore(100, time.Hour)
	store.Create("backtest")
	store.Create("search")

	jobs := store.List()
	if len(jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(jobs))
	}
}
