package workers

import (
	"context"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"

	"morpheus/internal/domain/memory"
)

type fakeMemories struct {
	sweeps chan struct{}
}

func (f *fakeMemories) Store(_ context.Context, _ *memory.Memory) error { return nil }

func (f *fakeMemories) SearchSimilar(_ context.Context, _ pgvector.Vector, _ string, _ int) ([]*memory.Memory, error) {
	return nil, nil
}

func (f *fakeMemories) DeleteExpired(_ context.Context) (int64, error) {
	f.sweeps <- struct{}{}
	return 1, nil
}

func TestMemoryCleanerSweepsAndStops(t *testing.T) {
	repo := &fakeMemories{sweeps: make(chan struct{}, 16)}
	cleaner := NewMemoryCleaner(repo, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleaner.Run(ctx)
		close(done)
	}()

	// One immediate sweep on start
	select {
	case <-repo.sweeps:
	case <-time.After(time.Second):
		t.Fatal("no initial sweep")
	}

	// At least one periodic sweep
	select {
	case <-repo.sweeps:
	case <-time.After(time.Second):
		t.Fatal("no periodic sweep")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop on cancellation")
	}
}
