package firmata

import (
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/muurk/firmata/protocol"
)

func analogAt(pin, value int) protocol.Message {
	return &protocol.AnalogMessage{Pin: pin, Value: value}
}

func TestDispatchChannelFiltering(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	var all, ch3 []protocol.Message
	d.add(protocol.KindAnalog, protocol.NoChannel, func(m protocol.Message) {
		all = append(all, m)
	})
	d.add(protocol.KindAnalog, 3, func(m protocol.Message) {
		ch3 = append(ch3, m)
	})

	d.dispatch(analogAt(3, 100))
	d.dispatch(analogAt(5, 200))
	d.dispatch(analogAt(3, 300))

	if len(all) != 3 {
		t.Errorf("wildcard listener saw %d messages, want 3", len(all))
	}
	if len(ch3) != 2 {
		t.Fatalf("channel-3 listener saw %d messages, want 2", len(ch3))
	}
	for _, m := range ch3 {
		if m.(*protocol.AnalogMessage).Pin != 3 {
			t.Errorf("channel-3 listener saw pin %d", m.(*protocol.AnalogMessage).Pin)
		}
	}
}

func TestDispatchKindFiltering(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	var analog, digital int
	d.add(protocol.KindAnalog, protocol.NoChannel, func(protocol.Message) { analog++ })
	d.add(protocol.KindDigital, protocol.NoChannel, func(protocol.Message) { digital++ })

	d.dispatch(analogAt(0, 1))
	d.dispatch(&protocol.DigitalMessage{Port: 0, Pins: 1})
	d.dispatch(analogAt(1, 2))

	if analog != 2 || digital != 1 {
		t.Errorf("analog = %d, digital = %d, want 2 and 1", analog, digital)
	}
}

func TestDispatchChannellessMessage(t *testing.T) {
	// A message without a channel attribute matches only wildcard entries.
	d := newDispatcher(zap.NewNop())

	var wildcard, pinned int
	d.add(protocol.KindReportFirmware, protocol.NoChannel, func(protocol.Message) { wildcard++ })
	d.add(protocol.KindReportFirmware, 3, func(protocol.Message) { pinned++ })

	d.dispatch(&protocol.ReportFirmwareMessage{Major: 2, Minor: 5, Name: "Blink"})

	if wildcard != 1 {
		t.Errorf("wildcard listener ran %d times, want 1", wildcard)
	}
	if pinned != 0 {
		t.Errorf("channel-3 listener ran %d times, want 0", pinned)
	}
}

func TestDispatchInsertionOrder(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	var order []string
	for _, tag := range []string{"a", "b", "c"} {
		tag := tag
		d.add(protocol.KindAnalog, protocol.NoChannel, func(protocol.Message) {
			order = append(order, tag)
		})
	}

	d.dispatch(analogAt(0, 0))

	if got := len(order); got != 3 {
		t.Fatalf("ran %d listeners, want 3", got)
	}
	if order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("delivery order = %v, want registration order", order)
	}
}

func TestDispatchPanicIsolation(t *testing.T) {
	// A panicking listener must not rob later listeners of the message.
	d := newDispatcher(zap.NewNop())

	var after int
	d.add(protocol.KindAnalog, protocol.NoChannel, func(protocol.Message) {
		panic("listener bug")
	})
	d.add(protocol.KindAnalog, protocol.NoChannel, func(protocol.Message) { after++ })

	d.dispatch(analogAt(0, 0))

	if after != 1 {
		t.Errorf("listener after the panic ran %d times, want 1", after)
	}
}

func TestSubscriptionClose(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	var calls int
	sub := d.add(protocol.KindAnalog, protocol.NoChannel, func(protocol.Message) { calls++ })

	d.dispatch(analogAt(0, 0))
	sub.Close()
	sub.Close() // idempotent
	d.dispatch(analogAt(0, 0))

	if calls != 1 {
		t.Errorf("listener ran %d times, want 1", calls)
	}
}

func TestCloseDuringDispatch(t *testing.T) {
	// Dispatch iterates a snapshot: a listener removed mid-dispatch still
	// sees the in-flight message, and drops out from the next one.
	d := newDispatcher(zap.NewNop())

	var second int
	var sub2 *Subscription
	d.add(protocol.KindAnalog, protocol.NoChannel, func(protocol.Message) {
		sub2.Close()
	})
	sub2 = d.add(protocol.KindAnalog, protocol.NoChannel, func(protocol.Message) { second++ })

	d.dispatch(analogAt(0, 0))
	if second != 1 {
		t.Fatalf("removed listener ran %d times during its last dispatch, want 1", second)
	}

	d.dispatch(analogAt(0, 0))
	if second != 1 {
		t.Errorf("listener ran after removal")
	}
}

func TestSelfCloseInsideListener(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	var calls int
	var sub *Subscription
	sub = d.add(protocol.KindAnalog, protocol.NoChannel, func(protocol.Message) {
		calls++
		sub.Close()
	})

	d.dispatch(analogAt(0, 0))
	d.dispatch(analogAt(0, 0))

	if calls != 1 {
		t.Errorf("self-closing listener ran %d times, want 1", calls)
	}
}

func TestConcurrentSubscribeAndDispatch(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				sub := d.add(protocol.KindAnalog, 1, func(protocol.Message) {})
				sub.Close()
			}
		}
	}()

	for i := 0; i < 500; i++ {
		d.dispatch(analogAt(1, i))
	}
	close(stop)
	wg.Wait()
}
