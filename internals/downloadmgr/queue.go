package downloadmgr

import "sync"

// eventQueue is an unbounded many-producer/single-consumer queue.
// push never blocks, so transfers never wait for the aggregator
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{signal: make(chan struct{}, 1)}
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
	q.notify()
}

func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notify()
}

func (q *eventQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// next blocks until events are available. It returns false once the queue
// is closed and drained
func (q *eventQueue) next() ([]Event, bool) {
	for {
		q.mu.Lock()
		if len(q.events) != 0 {
			events := q.events
			q.events = nil
			q.mu.Unlock()
			return events, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}
		<-q.signal
	}
}
