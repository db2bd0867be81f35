package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sources(n int) []Source {
	out := make([]Source, 0, n)
	for i := 0; i < n; i++ {
		content := strings.Repeat("x", 64*(i+1))
		out = append(out, Source{
			Name: fmt.Sprintf("file-%d.txt", i),
			Size: int64(len(content)),
			Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(content)), nil },
		})
	}
	return out
}

// funcTransport adapts a function to Transport.
type funcTransport func(ctx context.Context, name string, body io.Reader, size int64) error

func (f funcTransport) Upload(ctx context.Context, name string, body io.Reader, size int64) error {
	return f(ctx, name, body, size)
}

func TestClampConcurrency(t *testing.T) {
	assert.Equal(t, 1, ClampConcurrency(0))
	assert.Equal(t, 1, ClampConcurrency(-3))
	assert.Equal(t, 4, ClampConcurrency(4))
	assert.Equal(t, 10, ClampConcurrency(50))
}

func TestRunNeverExceedsConcurrencyCap(t *testing.T) {
	var active, peak atomic.Int32
	transport := funcTransport(func(ctx context.Context, _ string, body io.Reader, _ int64) error {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer active.Add(-1)
		time.Sleep(10 * time.Millisecond)
		_, err := io.Copy(io.Discard, body)
		return err
	})

	m := NewManager(3, transport, zerolog.Nop())
	var mu sync.Mutex
	uploading := map[string]bool{}
	maxUploading := 0
	m.OnUpdate(func(item Item) {
		mu.Lock()
		defer mu.Unlock()
		uploading[item.ID] = item.Status == StatusUploading
		count := 0
		for _, u := range uploading {
			if u {
				count++
			}
		}
		maxUploading = max(maxUploading, count)
	})

	m.Add(sources(7)...)
	require.NoError(t, m.Run(context.Background()))

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.LessOrEqual(t, maxUploading, 3)
	for _, item := range m.Snapshot() {
		assert.Equal(t, StatusDone, item.Status)
		assert.Equal(t, item.Size, item.Sent)
		assert.Equal(t, 1.0, item.Progress())
	}
	assert.False(t, m.InFlight())
}

func TestChunksRunSequentially(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32
	transport := funcTransport(func(ctx context.Context, name string, body io.Reader, _ int64) error {
		started.Add(1)
		if name == "file-0.txt" {
			<-release
		}
		_, err := io.Copy(io.Discard, body)
		return err
	})

	m := NewManager(2, transport, zerolog.Nop())
	m.Add(sources(4)...)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	require.Eventually(t, func() bool { return started.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), started.Load(), "second chunk waits for the slow item")
	assert.True(t, m.InFlight())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(4), started.Load())
}

func TestCancelDoesNotAffectSiblings(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Int32
	transport := funcTransport(func(ctx context.Context, _ string, body io.Reader, _ int64) error {
		started.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-release:
		}
		_, err := io.Copy(io.Discard, body)
		return err
	})

	m := NewManager(3, transport, zerolog.Nop())
	ids := m.Add(sources(3)...)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()
	require.Eventually(t, func() bool { return started.Load() == 3 }, time.Second, time.Millisecond)

	require.True(t, m.Cancel(ids[1]))
	close(release)
	require.NoError(t, <-done)

	items := m.Snapshot()
	assert.Equal(t, StatusDone, items[0].Status)
	assert.Equal(t, StatusError, items[1].Status)
	assert.Equal(t, CancelledReason, items[1].Error)
	assert.Equal(t, StatusDone, items[2].Status)
}

func TestCancelAfterSuccessfulUploadKeepsItemDone(t *testing.T) {
	var m *Manager
	var id string
	transport := funcTransport(func(_ context.Context, _ string, body io.Reader, _ int64) error {
		if _, err := io.Copy(io.Discard, body); err != nil {
			return err
		}
		// The object is stored; the cancel arrives before the status update.
		assert.True(t, m.Cancel(id))
		return nil
	})

	m = NewManager(1, transport, zerolog.Nop())
	id = m.Add(sources(1)...)[0]
	require.NoError(t, m.Run(context.Background()))

	items := m.Snapshot()
	assert.Equal(t, StatusDone, items[0].Status)
	assert.Empty(t, items[0].Error)
	assert.Equal(t, items[0].Size, items[0].Sent)
}

func TestCancelPendingItem(t *testing.T) {
	m := NewManager(1, funcTransport(func(context.Context, string, io.Reader, int64) error { return nil }), zerolog.Nop())
	ids := m.Add(sources(2)...)

	require.True(t, m.Cancel(ids[0]))
	require.NoError(t, m.Run(context.Background()))

	items := m.Snapshot()
	assert.Equal(t, StatusError, items[0].Status)
	assert.Equal(t, CancelledReason, items[0].Error)
	assert.Equal(t, 0, items[0].Attempts)
	assert.Equal(t, StatusDone, items[1].Status)
	assert.False(t, m.Cancel(ids[1]), "finished items cannot be cancelled")
	assert.False(t, m.Cancel("missing"))
}

func TestRetryFailedRequeuesOnlyFailures(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}
	failing := map[string]bool{"file-2.txt": true, "file-5.txt": true}
	transport := funcTransport(func(_ context.Context, name string, body io.Reader, _ int64) error {
		mu.Lock()
		calls[name]++
		attempt := calls[name]
		mu.Unlock()
		if _, err := io.Copy(io.Discard, body); err != nil {
			return err
		}
		if failing[name] && attempt == 1 {
			return errors.New("502 bad gateway")
		}
		return nil
	})

	m := NewManager(3, transport, zerolog.Nop())
	m.Add(sources(7)...)
	require.NoError(t, m.Run(context.Background()))

	counts := m.Counts()
	assert.Equal(t, 5, counts[StatusDone])
	assert.Equal(t, 2, counts[StatusError])

	assert.Equal(t, 2, m.RetryFailed())
	for _, item := range m.Snapshot() {
		if failing[item.Name] {
			assert.Equal(t, StatusPending, item.Status)
			assert.Empty(t, item.Error)
		} else {
			assert.Equal(t, StatusDone, item.Status)
		}
	}

	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, 7, m.Counts()[StatusDone])
	for name, n := range calls {
		if failing[name] {
			assert.Equal(t, 2, n, name)
		} else {
			assert.Equal(t, 1, n, name)
		}
	}
	assert.Equal(t, 0, m.RetryFailed())
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transport := funcTransport(func(ctx context.Context, _ string, body io.Reader, _ int64) error {
		cancel()
		_, err := io.Copy(io.Discard, body)
		return err
	})

	m := NewManager(1, transport, zerolog.Nop())
	m.Add(sources(3)...)
	err := m.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	counts := m.Counts()
	assert.Equal(t, 1, counts[StatusError])
	assert.Equal(t, 2, counts[StatusPending])
}

func TestOpenFailureMarksItemFailed(t *testing.T) {
	m := NewManager(2, funcTransport(func(context.Context, string, io.Reader, int64) error { return nil }), zerolog.Nop())
	m.Add(Source{Name: "gone.txt", Open: func() (io.ReadCloser, error) { return nil, errors.New("no such file") }})
	require.NoError(t, m.Run(context.Background()))

	item := m.Snapshot()[0]
	assert.Equal(t, StatusError, item.Status)
	assert.Equal(t, "no such file", item.Error)
}
