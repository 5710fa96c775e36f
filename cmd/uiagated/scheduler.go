package main

import (
	"sync"
	"time"
)

// flushScheduler is the host half of the notify contract: it turns delay
// hints from the sink into deferred flush calls, keeping only the earliest
// pending deadline. Notifications arrive on OS/source threads, so all state
// is mutex-guarded and the notify path never blocks.
type flushScheduler struct {
	flush func()

	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
	stopped  bool
}

func newFlushScheduler(flush func()) *flushScheduler {
	return &flushScheduler{flush: flush}
}

// notify implements limiter.NotifyFunc.
func (fs *flushScheduler) notify(delay time.Duration) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.stopped {
		return
	}
	deadline := time.Now().Add(delay)
	if fs.timer != nil {
		if deadline.After(fs.deadline) {
			// A flush is already due sooner; this batch rides along.
			return
		}
		fs.timer.Stop()
	}
	fs.deadline = deadline
	fs.timer = time.AfterFunc(delay, fs.fire)
}

func (fs *flushScheduler) fire() {
	fs.mu.Lock()
	fs.timer = nil
	stopped := fs.stopped
	fs.mu.Unlock()
	if !stopped {
		fs.flush()
	}
}

// stop cancels any pending flush and performs a final drain.
func (fs *flushScheduler) stop() {
	fs.mu.Lock()
	fs.stopped = true
	if fs.timer != nil {
		fs.timer.Stop()
		fs.timer = nil
	}
	fs.mu.Unlock()
	fs.flush()
}
