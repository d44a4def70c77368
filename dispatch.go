package firmata

import (
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/firmata/protocol"
)

// Listener consumes one decoded message. Listeners run on the client's read
// goroutine: a listener that blocks stalls all decoding, so hand long work
// off to another goroutine.
type Listener func(protocol.Message)

// Subscription is a handle on one registered listener. Close unregisters it;
// the removal is observable from the next dispatch.
type Subscription struct {
	d    *dispatcher
	kind protocol.Kind
	id   uint64
	once sync.Once
}

// Close removes the listener. Safe to call more than once and safe to call
// from inside the listener itself.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.d.remove(s.kind, s.id)
	})
}

type listenerEntry struct {
	id      uint64
	channel int // protocol.NoChannel matches every channel
	fn      Listener
}

// dispatcher routes messages to listeners by kind and channel. One lives
// inside each Client.
type dispatcher struct {
	log    *zap.Logger
	mu     sync.RWMutex
	nextID uint64
	byKind map[protocol.Kind][]listenerEntry
}

func newDispatcher(log *zap.Logger) *dispatcher {
	return &dispatcher{
		log:    log,
		byKind: make(map[protocol.Kind][]listenerEntry),
	}
}

func (d *dispatcher) add(kind protocol.Kind, channel int, fn Listener) *Subscription {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.byKind[kind] = append(d.byKind[kind], listenerEntry{id: id, channel: channel, fn: fn})
	d.mu.Unlock()
	return &Subscription{d: d, kind: kind, id: id}
}

func (d *dispatcher) remove(kind protocol.Kind, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.byKind[kind]
	for i, e := range entries {
		if e.id == id {
			d.byKind[kind] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(d.byKind[kind]) == 0 {
		delete(d.byKind, kind)
	}
}

// dispatch delivers msg synchronously to every matching listener in
// registration order. It iterates a snapshot: listeners added or removed
// while a dispatch runs take effect from the next message.
func (d *dispatcher) dispatch(msg protocol.Message) {
	kind := msg.MessageKind()

	d.mu.RLock()
	entries := d.byKind[kind]
	snapshot := make([]listenerEntry, len(entries))
	copy(snapshot, entries)
	d.mu.RUnlock()

	channel := protocol.NoChannel
	if cm, ok := msg.(protocol.Channeled); ok {
		channel = cm.Channel()
	}

	for _, e := range snapshot {
		if e.channel != protocol.NoChannel && e.channel != channel {
			continue
		}
		d.deliver(e, msg)
	}
}

// deliver invokes one listener, containing any panic so the rest of the
// matching listeners still run.
func (d *dispatcher) deliver(e listenerEntry, msg protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("listener panicked",
				zap.String("kind", string(msg.MessageKind())),
				zap.String("message", msg.String()),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	e.fn(msg)
}
