package broadcast

import (
	"sync"

	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/internal/queue"
	"go.uber.org/zap"
)

// Subscription is a registered callback. Unsubscribing stops delivery to it without affecting other subscribers.
type Subscription interface {
	Unsubscribe()
}

// topic fans values out to subscribers. Each subscriber owns a queue drained by its own goroutine,
// so a slow or panicking callback only delays itself.
type topic[T any] struct {
	channel     Channel
	logger      *zap.SugaredLogger
	pendingWarn int
	panics      tally.Counter
	published   tally.Counter
	wg          *sync.WaitGroup

	mu     sync.Mutex
	seq    int
	subs   map[int]*subscriber[T]
	closed bool
}

type subscriber[T any] struct {
	id    int
	topic *topic[T]
	queue *queue.Unbounded[T]
	f     func(T)
}

func newTopic[T any](channel Channel, b *broadcaster) *topic[T] {
	scope := b.scope.Tagged(map[string]string{"channel": string(channel)})
	return &topic[T]{
		channel:     channel,
		logger:      b.logger.With("channel", channel),
		pendingWarn: b.cfg.PendingWarn,
		panics:      scope.Counter("subscriber_panics"),
		published:   scope.Counter("published"),
		wg:          &b.wg,
		subs:        make(map[int]*subscriber[T]),
	}
}

func (t *topic[T]) subscribe(f func(T)) Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	s := &subscriber[T]{
		id:    t.seq,
		topic: t,
		queue: queue.New[T](),
		f:     f,
	}
	if t.closed {
		s.queue.Close()
		return s
	}
	t.subs[s.id] = s

	t.wg.Add(1)
	go s.run()
	return s
}

// publish queues v for every current subscriber. It never blocks on a subscriber.
func (t *topic[T]) publish(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.published.Inc(1)
	for _, s := range t.subs {
		depth := s.queue.Push(v)
		if t.pendingWarn > 0 && depth > 0 && depth%t.pendingWarn == 0 {
			t.logger.Warnw("subscriber is falling behind", "subscriber", s.id, "pending", depth)
		}
	}
}

// close stops accepting values. Subscribers still receive what was already queued.
func (t *topic[T]) close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	for id, s := range t.subs {
		s.queue.Close()
		delete(t.subs, id)
	}
}

func (s *subscriber[T]) Unsubscribe() {
	s.topic.mu.Lock()
	delete(s.topic.subs, s.id)
	s.topic.mu.Unlock()
	s.queue.Discard()
}

func (s *subscriber[T]) run() {
	defer s.topic.wg.Done()
	for {
		v, ok := s.queue.Pop()
		if !ok {
			return
		}
		s.deliver(v)
	}
}

func (s *subscriber[T]) deliver(v T) {
	defer func() {
		if r := recover(); r != nil {
			s.topic.panics.Inc(1)
			s.topic.logger.Errorw("subscriber panicked", "subscriber", s.id, "panic", r)
		}
	}()
	s.f(v)
}
