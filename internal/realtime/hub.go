package realtime

// Hub fans playlist and catalog events out to every attached listener.
// All listener-set mutation happens on the Run goroutine.
type Hub struct {
	listeners map[*Client]bool

	events     chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		listeners:  make(map[*Client]bool),
		events:     make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Broadcast queues an event for delivery to every listener.
func (h *Hub) Broadcast(event []byte) {
	h.events <- event
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.listeners[c] = true

		case c := <-h.unregister:
			h.drop(c)

		case event := <-h.events:
			for c := range h.listeners {
				select {
				case c.send <- event:
				default:
					// Listener cannot keep up with the event stream.
					h.drop(c)
				}
			}
		}
	}
}

// drop detaches a listener and releases its connection. Safe to call twice;
// the second call is a no-op.
func (h *Hub) drop(c *Client) {
	if _, ok := h.listeners[c]; !ok {
		return
	}
	delete(h.listeners, c)
	close(c.send)
	_ = c.conn.Close()
}
