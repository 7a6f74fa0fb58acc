package websocket

import "github.com/rs/zerolog/log"

type targeted struct {
	userID  string
	message []byte
}

type direct struct {
	client  *Client
	message []byte
}

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages for the clients of a single user.
	publish chan targeted

	// Answers addressed to one connection.
	replies chan direct

	// A map of user IDs to the set of that user's open connections.
	subscriptions map[string]map[*Client]bool

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		publish:       make(chan targeted, 256),
		replies:       make(chan direct, 256),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client)
			log.Info().Int("total_clients", len(h.clients)).Str("user_id", client.UserID).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case r := <-h.replies:
			if h.clients[r.client] {
				h.send(r.client, r.message)
			}
		case t := <-h.publish:
			for client := range h.subscriptions[t.userID] {
				h.send(client, t.message)
			}
		}
	}
}

// Stop closes every connection and ends Run.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues message for every connection of userID. It never blocks;
// when the queue is full the message is dropped.
func (h *Hub) Publish(userID string, message []byte) {
	select {
	case h.publish <- targeted{userID: userID, message: message}:
	default:
		log.Warn().Str("user_id", userID).Msg("Hub publish queue full, dropping message")
	}
}

// Reply queues message for a single connection. Like Publish it never blocks,
// and replies to connections the hub no longer holds are discarded. Only the
// Run goroutine writes to or closes a client's Send channel.
func (h *Hub) Reply(client *Client, message []byte) {
	select {
	case h.replies <- direct{client: client, message: message}:
	default:
		log.Warn().Str("client_id", client.ID).Msg("Hub reply queue full, dropping message")
	}
}

func (h *Hub) send(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	h.removeSubscription(client)
	close(client.Send)
}

func (h *Hub) addSubscription(client *Client) {
	if h.subscriptions[client.UserID] == nil {
		h.subscriptions[client.UserID] = make(map[*Client]bool)
	}
	h.subscriptions[client.UserID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	if subs, ok := h.subscriptions[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.UserID)
		}
	}
}
