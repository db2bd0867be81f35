// Package uploader drives batches of file uploads with a concurrency cap,
// per-file progress, cancellation and retry.
package uploader

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	MinConcurrency = 1
	MaxConcurrency = 10
)

// CancelledReason is the error text of an item cancelled by the user.
const CancelledReason = "Upload cancelled"

// Status is the lifecycle state of an item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// Source is a file to upload. Open is called once per attempt.
type Source struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Item is the observable state of one upload.
type Item struct {
	ID       string
	Name     string
	Size     int64
	Sent     int64
	Status   Status
	Error    string
	Attempts int
}

// Progress returns the sent fraction in [0, 1].
func (i Item) Progress() float64 {
	if i.Size <= 0 {
		if i.Status == StatusDone {
			return 1
		}
		return 0
	}
	return min(float64(i.Sent)/float64(i.Size), 1)
}

// Transport performs a single upload request.
type Transport interface {
	Upload(ctx context.Context, name string, body io.Reader, size int64) error
}

type entry struct {
	item      Item
	source    Source
	cancel    context.CancelFunc
	cancelled bool
}

// Manager uploads queued items in sequential chunks of Concurrency items. Items
// within a chunk run in parallel and the next chunk starts once all of them end.
type Manager struct {
	mu          sync.Mutex
	concurrency int
	transport   Transport
	entries     []*entry
	index       map[string]*entry
	nextID      int
	running     bool
	onUpdate    func(Item)
	log         zerolog.Logger
}

// NewManager clamps concurrency into [MinConcurrency, MaxConcurrency].
func NewManager(concurrency int, transport Transport, log zerolog.Logger) *Manager {
	return &Manager{
		concurrency: ClampConcurrency(concurrency),
		transport:   transport,
		index:       make(map[string]*entry),
		log:         log.With().Str("component", "upload-manager").Logger(),
	}
}

// ClampConcurrency bounds n to the supported range.
func ClampConcurrency(n int) int {
	return max(MinConcurrency, min(n, MaxConcurrency))
}

// Concurrency returns the effective chunk size.
func (m *Manager) Concurrency() int {
	return m.concurrency
}

// OnUpdate registers a callback invoked after every item state or progress change.
// It is called without internal locks held.
func (m *Manager) OnUpdate(fn func(Item)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// Add queues sources and returns their ids in order.
func (m *Manager) Add(sources ...Source) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(sources))
	for _, src := range sources {
		m.nextID++
		id := strconv.Itoa(m.nextID)
		e := &entry{
			item:   Item{ID: id, Name: src.Name, Size: src.Size, Status: StatusPending},
			source: src,
		}
		m.entries = append(m.entries, e)
		m.index[id] = e
		ids = append(ids, id)
	}
	return ids
}

// Run uploads every pending item. It returns when all chunks finished or ctx was
// cancelled; items not yet started stay pending. Item failures are recorded on the
// item and never returned.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("uploader: already running")
	}
	m.running = true
	var pending []*entry
	for _, e := range m.entries {
		if e.item.Status == StatusPending {
			pending = append(pending, e)
		}
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	for start := 0; start < len(pending); start += m.concurrency {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := pending[start:min(start+m.concurrency, len(pending))]
		m.runChunk(ctx, chunk)
	}
	return ctx.Err()
}

func (m *Manager) runChunk(ctx context.Context, chunk []*entry) {
	var group errgroup.Group
	for _, e := range chunk {
		itemCtx, cancel := context.WithCancel(ctx)

		m.mu.Lock()
		if e.item.Status != StatusPending {
			m.mu.Unlock()
			cancel()
			continue
		}
		e.cancel = cancel
		e.cancelled = false
		e.item.Status = StatusUploading
		e.item.Sent = 0
		e.item.Error = ""
		e.item.Attempts++
		snapshot := e.item
		m.mu.Unlock()
		m.notify(snapshot)

		group.Go(func() error {
			defer cancel()
			m.upload(itemCtx, e)
			return nil
		})
	}
	_ = group.Wait()
}

func (m *Manager) upload(ctx context.Context, e *entry) {
	err := m.send(ctx, e)

	m.mu.Lock()
	// A completed upload stays done even if Cancel raced with the final response.
	switch {
	case err == nil:
		e.item.Status = StatusDone
		e.item.Sent = e.item.Size
	case e.cancelled:
		e.item.Status = StatusError
		e.item.Error = CancelledReason
	default:
		e.item.Status = StatusError
		e.item.Error = err.Error()
	}
	e.cancel = nil
	snapshot := e.item
	m.mu.Unlock()

	if snapshot.Status == StatusError {
		m.log.Warn().Str("file", snapshot.Name).Str("reason", snapshot.Error).Msg("upload failed")
	}
	m.notify(snapshot)
}

func (m *Manager) send(ctx context.Context, e *entry) error {
	body, err := e.source.Open()
	if err != nil {
		return err
	}
	defer body.Close()

	reader := &countingReader{ctx: ctx, r: body, onRead: func(n int) { m.progress(e, int64(n)) }}
	return m.transport.Upload(ctx, e.source.Name, reader, e.source.Size)
}

func (m *Manager) progress(e *entry, n int64) {
	m.mu.Lock()
	e.item.Sent += n
	snapshot := e.item
	m.mu.Unlock()
	m.notify(snapshot)
}

func (m *Manager) notify(item Item) {
	m.mu.Lock()
	fn := m.onUpdate
	m.mu.Unlock()
	if fn != nil {
		fn(item)
	}
}

// Cancel aborts an uploading item or withdraws a pending one. Either way the item
// ends in StatusError with CancelledReason. Other items are not affected.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	e, ok := m.index[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	var snapshot Item
	notify := false
	switch e.item.Status {
	case StatusUploading:
		e.cancelled = true
		if e.cancel != nil {
			e.cancel()
		}
	case StatusPending:
		e.item.Status = StatusError
		e.item.Error = CancelledReason
		snapshot, notify = e.item, true
	default:
		m.mu.Unlock()
		return false
	}
	m.mu.Unlock()

	if notify {
		m.notify(snapshot)
	}
	return true
}

// RetryFailed re-queues every failed item and returns how many were re-queued.
func (m *Manager) RetryFailed() int {
	m.mu.Lock()
	var requeued []Item
	for _, e := range m.entries {
		if e.item.Status != StatusError {
			continue
		}
		e.item.Status = StatusPending
		e.item.Error = ""
		e.item.Sent = 0
		e.cancelled = false
		requeued = append(requeued, e.item)
	}
	m.mu.Unlock()

	for _, item := range requeued {
		m.notify(item)
	}
	return len(requeued)
}

// InFlight reports whether a batch is running or any item is uploading.
func (m *Manager) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return true
	}
	for _, e := range m.entries {
		if e.item.Status == StatusUploading {
			return true
		}
	}
	return false
}

// Snapshot returns the items in queue order.
func (m *Manager) Snapshot() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]Item, 0, len(m.entries))
	for _, e := range m.entries {
		items = append(items, e.item)
	}
	return items
}

// Counts tallies items by status.
func (m *Manager) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, item := range m.Snapshot() {
		counts[item.Status]++
	}
	return counts
}

// countingReader reports bytes read and stops once ctx is cancelled.
type countingReader struct {
	ctx    context.Context
	r      io.Reader
	onRead func(int)
}

func (c *countingReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.r.Read(p)
	if n > 0 {
		c.onRead(n)
	}
	return n, err
}
