package listing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type Result struct {
	Body       []byte
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Downloader runs at most one fetch at a time on its own goroutine and
// reports the outcome through a completion callback.
type Downloader struct {
	mu      sync.Mutex
	fetcher Fetcher
	running bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	runs    uint64
}

func NewDownloader(f Fetcher) *Downloader {
	return &Downloader{fetcher: f}
}

// Start begins a fetch unless one is already running or the downloader has
// been stopped. apply runs on the fetch goroutine while the downloader still
// reports busy; notify runs after it has gone idle and receives apply's error.
// Either callback may be nil.
func (d *Downloader) Start(ctx context.Context, apply func(Result) error, notify func(error)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running || d.stopped || d.fetcher == nil {
		return false
	}
	d.running = true
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	atomic.AddUint64(&d.runs, 1)
	d.wg.Add(1)
	go d.run(runCtx, apply, notify)
	return true
}

func (d *Downloader) run(ctx context.Context, apply func(Result) error, notify func(error)) {
	defer d.wg.Done()
	res := Result{StartedAt: time.Now().UTC()}
	res.Body, res.Err = d.fetcher.Fetch(ctx)
	res.FinishedAt = time.Now().UTC()

	err := res.Err
	if apply != nil {
		err = apply(res)
	}

	d.mu.Lock()
	d.running = false
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	if notify != nil {
		notify(err)
	}
}

func (d *Downloader) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Runs counts fetches started over the downloader's lifetime.
func (d *Downloader) Runs() uint64 {
	return atomic.LoadUint64(&d.runs)
}

// Stop cancels an in-flight fetch and waits for its callbacks to return.
func (d *Downloader) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}
