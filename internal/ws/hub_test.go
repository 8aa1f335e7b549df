package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/railpos/railpos/internal/events"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, buffer int) *Client {
	return &Client{hub: hub, send: make(chan []byte, buffer)}
}

func TestHubBroadcastsBusEvents(t *testing.T) {
	bus := events.NewBus()
	hub := NewHub()
	go hub.Run(bus)

	client1 := mockClient(hub, 64)
	client2 := mockClient(hub, 64)
	hub.register <- client1
	hub.register <- client2

	want := events.Event{Entity: "order", Action: events.ActionCreated, ID: "1"}
	bus.Publish(want)

	for name, c := range map[string]*Client{"client1": client1, "client2": client2} {
		select {
		case msg := <-c.send:
			var got events.Event
			if err := json.Unmarshal(msg, &got); err != nil {
				t.Fatalf("%s: unmarshal: %v", name, err)
			}
			if got != want {
				t.Fatalf("%s got %+v, want %+v", name, got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s never received the event", name)
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	bus := events.NewBus()
	hub := NewHub()
	go hub.Run(bus)

	client := mockClient(hub, 64)
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected closed send channel after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed after unregister")
	}
}

func TestHubDropsUnresponsiveClient(t *testing.T) {
	bus := events.NewBus()
	hub := NewHub()
	go hub.Run(bus)

	client := mockClient(hub, 2)
	hub.register <- client

	// Fill the client's buffer without draining; the overflowing fanout must
	// drop the connection by closing its send channel.
	for i := 0; i < cap(client.send)+2; i++ {
		bus.Publish(events.Event{Entity: "order", Action: events.ActionUpdated, ID: "x"})
	}
	// Give hub time to process
	time.Sleep(50 * time.Millisecond)

	for i := 0; i <= cap(client.send); i++ {
		select {
		case _, ok := <-client.send:
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("expected buffered messages then a closed channel")
		}
	}
	t.Fatal("hub never dropped the unresponsive client")
}
