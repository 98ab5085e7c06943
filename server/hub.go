package server

import (
	"sync"
	"sync/atomic"
)

// hub is a latest-frame mailbox between the render path and the MJPEG
// stream handlers. Publishing overwrites the previous frame; slow
// subscribers skip ahead to the newest frame instead of queueing, and
// overwritten frames are counted as drops.
type hub struct {
	mu     sync.Mutex
	cond   *sync.Cond
	frame  []byte
	seq    uint64
	closed bool

	waiters int
	drops   uint64
}

func newHub() *hub {
	h := &hub{}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// publish stores the encoded frame and wakes all waiting subscribers.
func (h *hub) publish(jpeg []byte) {
	h.mu.Lock()
	if h.frame != nil && h.waiters == 0 {
		atomic.AddUint64(&h.drops, 1)
	}
	h.frame = jpeg
	h.seq++
	h.cond.Broadcast()
	h.mu.Unlock()
}

// latest returns the most recent frame without waiting, or nil if
// nothing was published yet.
func (h *hub) latest() ([]byte, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame, h.seq
}

// next blocks until a frame newer than afterSeq is available. It
// returns ok=false once the hub is closed.
func (h *hub) next(afterSeq uint64) (frame []byte, seq uint64, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.waiters++
	for h.seq <= afterSeq && !h.closed {
		h.cond.Wait()
	}
	h.waiters--

	if h.closed {
		return nil, 0, false
	}
	return h.frame, h.seq, true
}

// close releases all blocked subscribers.
func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	h.cond.Broadcast()
	h.mu.Unlock()
}

// dropCount reports frames overwritten before any subscriber saw them.
func (h *hub) dropCount() uint64 {
	return atomic.LoadUint64(&h.drops)
}
