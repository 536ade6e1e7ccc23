package conversation

import (
	"errors"
	"sync"
)

var ErrDispatcherClosed = errors.New("dispatcher closed")

// Dispatcher runs jobs one at a time per user, in submission order. Different
// users proceed in parallel; idle users hold no goroutine.
type Dispatcher struct {
	mu     sync.Mutex
	queues map[int64]*userQueue
	closed bool
	wg     sync.WaitGroup
}

type userQueue struct {
	jobs []func()
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{queues: make(map[int64]*userQueue)}
}

// Submit enqueues job for userID.
func (d *Dispatcher) Submit(userID int64, job func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	if q, ok := d.queues[userID]; ok {
		q.jobs = append(q.jobs, job)
		return nil
	}
	d.queues[userID] = &userQueue{jobs: []func(){job}}
	d.wg.Add(1)
	go d.drain(userID)
	return nil
}

func (d *Dispatcher) drain(userID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[userID]
		if len(q.jobs) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		d.mu.Unlock()

		job()
	}
}

// Close refuses new jobs and waits for the queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
