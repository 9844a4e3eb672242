package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmrstac/internal/catalog"
	"cmrstac/internal/config"
)

type fakeSyncer struct {
	mu       sync.Mutex
	keywords []string
	fail     string
	onCall   func(n int)
}

func (f *fakeSyncer) Sync(_ context.Context, keyword string) (catalog.SyncResult, error) {
	f.mu.Lock()
	f.keywords = append(f.keywords, keyword)
	n := len(f.keywords)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(n)
	}
	if keyword == f.fail {
		return catalog.SyncResult{}, errors.New("boom")
	}
	return catalog.SyncResult{Keyword: keyword}, nil
}

func TestRunRequiresKeywords(t *testing.T) {
	svc := NewService(&fakeSyncer{}, config.Config{})
	assert.Error(t, svc.Run(context.Background()))
}

func TestRunKeepsGoingAfterErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer := &fakeSyncer{fail: "gedi"}
	syncer.onCall = func(n int) {
		if n == 4 {
			cancel()
		}
	}
	svc := NewService(syncer, config.Config{WatchKeywords: []string{"gedi", "biomass"}})
	svc.interval = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	syncer.mu.Lock()
	defer syncer.mu.Unlock()
	assert.Equal(t, []string{"gedi", "biomass", "gedi", "biomass"}, syncer.keywords)
}
