// Package spectate streams live self-play positions to browsers over a
// websocket.
package spectate

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/selfplay"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Position is the JSON form of one live position.
type Position struct {
	GameID string `json:"game_id"`
	Ply    int    `json:"ply"`
	Move   string `json:"move"`
	// Rows holds the eight ranks, rank 8 first, one piece letter per file
	// (uppercase white, "." empty).
	Rows       [8]string `json:"rows"`
	SideToMove string    `json:"side_to_move"`
	Castling   string    `json:"castling"`
	EnPassant  string    `json:"en_passant"`
	InCheck    bool      `json:"in_check"`
	Value      float32   `json:"value"`
}

// Result announces a finished game.
type Result struct {
	GameID    string `json:"game_id"`
	Outcome   string `json:"outcome"`
	Plies     int    `json:"plies"`
	Truncated bool   `json:"truncated"`
}

// NewPosition converts a self-play step.
func NewPosition(s selfplay.Step) Position {
	p := Position{
		GameID:     s.GameID,
		Ply:        s.Ply,
		Move:       s.Move.String(),
		SideToMove: s.State.SideToMove.String(),
		Castling:   s.State.Castling.String(),
		EnPassant:  s.State.EnPassant.String(),
		Value:      s.Value,
	}
	for rank := 7; rank >= 0; rank-- {
		var row [8]byte
		for file := 0; file < 8; file++ {
			row[file] = s.State.Board[board.NewSquare(file, rank)].String()[0]
		}
		p.Rows[7-rank] = string(row[:])
	}
	p.InCheck, _ = s.State.InCheck(s.State.SideToMove)
	return p
}

// Hub fans positions out to websocket clients and keeps the latest position
// of every running game for the REST endpoints.
type Hub struct {
	mu        sync.Mutex
	clients   map[*Client]struct{}
	latest    map[string]Position
	broadcast chan wsMessage
}

type Client struct {
	hub  *Hub
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		latest:    make(map[string]Position),
		broadcast: make(chan wsMessage, 64),
	}
}

// Run delivers queued messages until done is closed.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				client.sendRaw(data)
			}
			h.mu.Unlock()
		}
	}
}

// PublishStep records the position and queues it for clients. It never
// blocks; when the queue is full the message is dropped.
func (h *Hub) PublishStep(s selfplay.Step) {
	pos := NewPosition(s)
	h.mu.Lock()
	h.latest[pos.GameID] = pos
	h.mu.Unlock()
	h.enqueue(wsMessage{Type: "position", Payload: mustMarshal(pos)})
}

// PublishResult forgets the game and announces its result.
func (h *Hub) PublishResult(u selfplay.GameUpdate) {
	res := Result{
		GameID:    u.Result.GameID,
		Outcome:   u.Result.Outcome(),
		Plies:     u.Result.Plies,
		Truncated: u.Result.Truncated,
	}
	h.mu.Lock()
	delete(h.latest, res.GameID)
	h.mu.Unlock()
	h.enqueue(wsMessage{Type: "result", Payload: mustMarshal(res)})
}

func (h *Hub) enqueue(msg wsMessage) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// Games returns the latest position of every running game, ordered by ID.
func (h *Hub) Games() []Position {
	h.mu.Lock()
	out := make([]Position, 0, len(h.latest))
	for _, p := range h.latest {
		out = append(out, p)
	}
	h.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}

// Game returns the latest position of one game.
func (h *Hub) Game(id string) (Position, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.latest[id]
	return p, ok
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.sendRaw(data)
}

func (c *Client) sendRaw(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
