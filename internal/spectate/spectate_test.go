package spectate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/selfplay"
)

func openingStep(t *testing.T) selfplay.Step {
	t.Helper()
	s := board.NewState()
	if err := board.ApplyMove(s, board.E2, board.E4, nil); err != nil {
		t.Fatal(err)
	}
	return selfplay.Step{GameID: "g1", Ply: 0, Move: board.NewMove(board.E2, board.E4), State: s, Value: 0.25}
}

func TestNewPosition(t *testing.T) {
	pos := NewPosition(openingStep(t))
	if pos.Rows[0] != "rnbqkbnr" || pos.Rows[4] != "....P..." || pos.Rows[7] != "RNBQKBNR" {
		t.Errorf("rows = %q", pos.Rows)
	}
	if pos.SideToMove != "Black" || pos.EnPassant != "e3" || pos.Castling != "KQkq" || pos.Move != "e2e4" {
		t.Errorf("position = %+v", pos)
	}
	if pos.InCheck {
		t.Error("opening position is not check")
	}
}

func TestRESTEndpoints(t *testing.T) {
	hub := NewHub()
	hub.PublishStep(openingStep(t))
	srv := httptest.NewServer(NewRouter(hub))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/games")
	if err != nil {
		t.Fatal(err)
	}
	var games []Position
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(games) != 1 || games[0].GameID != "g1" {
		t.Fatalf("games = %+v", games)
	}

	resp, err = http.Get(srv.URL + "/api/games/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown game status = %d", resp.StatusCode)
	}

	hub.PublishResult(selfplay.GameUpdate{Result: selfplay.GameResult{GameID: "g1", Status: board.Checkmate, Winner: board.White}})
	if _, ok := hub.Game("g1"); ok {
		t.Error("finished game still listed")
	}
}

func TestWebsocketStream(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	srv := httptest.NewServer(NewRouter(hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "snapshot" {
		t.Fatalf("first message %q, want snapshot", msg.Type)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.PublishStep(openingStep(t))

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "position" {
		t.Fatalf("message %q, want position", msg.Type)
	}
	var pos Position
	if err := json.Unmarshal(msg.Payload, &pos); err != nil {
		t.Fatal(err)
	}
	if pos.GameID != "g1" || pos.Move != "e2e4" || pos.Value != 0.25 {
		t.Errorf("position = %+v", pos)
	}
}
