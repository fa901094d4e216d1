package events

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Dispatcher fans events out to observers from a fixed pool of workers.
type Dispatcher struct {
	observers map[string]Observer
	events    chan Event
	workers   int
	log       *logrus.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	wg        sync.WaitGroup

	// closeMu orders Publish sends before the workers' final drain.
	closeMu sync.RWMutex
	closed  bool
}

func NewDispatcher(workers, bufferSize int, log *logrus.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		observers: make(map[string]Observer),
		events:    make(chan Event, bufferSize),
		workers:   workers,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.processEvents()
	}

	return d
}

func (d *Dispatcher) Subscribe(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers[observer.Name()] = observer
	d.log.WithField("observer", observer.Name()).Info("observer subscribed")
}

func (d *Dispatcher) Unsubscribe(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.observers, observer.Name())
	d.log.WithField("observer", observer.Name()).Info("observer unsubscribed")
}

// Notify delivers event to every observer synchronously.
func (d *Dispatcher) Notify(event Event) {
	d.mu.RLock()
	observers := make([]Observer, 0, len(d.observers))
	for _, obs := range d.observers {
		observers = append(observers, obs)
	}
	d.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(event); err != nil {
			d.log.WithFields(logrus.Fields{
				"observer": observer.Name(),
				"event":    event.Type,
			}).WithError(err).Warn("observer update failed")
		}
	}
}

// Publish queues event for the workers. A full queue or a dispatcher that
// has been shut down drops the event.
func (d *Dispatcher) Publish(event Event) {
	d.closeMu.RLock()
	defer d.closeMu.RUnlock()

	if d.closed {
		d.log.WithField("event", event.Type).Warn("dispatcher closed, dropping event")
		return
	}
	select {
	case d.events <- event:
	default:
		d.log.WithField("event", event.Type).Warn("event queue full, dropping event")
	}
}

func (d *Dispatcher) processEvents() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.events:
			d.Notify(event)
		case <-d.ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.events:
			d.Notify(event)
		default:
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is queued and waits for
// the workers to exit.
func (d *Dispatcher) Shutdown() {
	d.closeMu.Lock()
	d.closed = true
	d.closeMu.Unlock()

	d.cancel()
	d.wg.Wait()
	d.log.Info("event dispatcher shutdown complete")
}
