package events

// Logger is the logging surface the dispatcher needs.
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Subscriber consumes dispatched events. Subscriber errors are logged, never
// propagated.
type Subscriber interface {
	Handle(ev Event) error
}

// Dispatcher fans events out to subscribers from a single background worker.
// Dispatch never blocks: if the queue is full the event is dropped with a log
// line, because downstream effects are best-effort by contract.
type Dispatcher struct {
	logger      Logger
	subscribers []Subscriber
	queue       chan Event
	done        chan struct{}
}

// NewDispatcher starts a dispatcher with the given queue capacity.
func NewDispatcher(logger Logger, capacity int, subscribers ...Subscriber) *Dispatcher {
	if capacity <= 0 {
		capacity = 100
	}

	d := &Dispatcher{
		logger:      logger,
		subscribers: subscribers,
		queue:       make(chan Event, capacity),
		done:        make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		for _, sub := range d.subscribers {
			if err := sub.Handle(ev); err != nil {
				d.logger.Error("events: subscriber failed on %s for appointment id=%d: %v",
					ev.Type, ev.AppointmentID, err)
			}
		}
	}
}

// Dispatch enqueues an event without blocking.
func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("events: queue full, dropping %s for appointment id=%d", ev.Type, ev.AppointmentID)
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}
