package arena

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

type testServer struct {
	game    *Game
	hub     *Hub
	tickets *Tickets
	srv     *httptest.Server
}

func newTestServer(t *testing.T, cfg MatchConfig) *testServer {
	t.Helper()
	hub := NewHub(quietLogger())
	g, err := NewGame(Options{Config: cfg, MatchID: "ws-match", Logger: quietLogger(), Sink: hub})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	tickets := NewTickets([]byte("test-secret"))
	srv := httptest.NewServer(SetupRoutes(hub, g, tickets, RouteOptions{DevTickets: true}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &testServer{game: g, hub: hub, tickets: tickets, srv: srv}
}

func (ts *testServer) wsURL(ticket string) string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws?ticket=" + url.QueryEscape(ticket)
}

// dial joins the match and returns the connection and its welcome
func (ts *testServer) dial(t *testing.T, name string) (*websocket.Conn, WelcomeMsg) {
	t.Helper()
	tok, err := ts.tickets.Issue(name, TeamNone)
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(ts.wsURL(tok), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	var env struct {
		T string     `json:"t"`
		D WelcomeMsg `json:"d"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("unmarshal welcome: %v", err)
	}
	if env.T != MsgWelcome {
		t.Fatalf("expected welcome, got %q", env.T)
	}
	return conn, env.D
}

func (ts *testServer) waitClients(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for ts.hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, ts.hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// readState skips text frames until a binary snapshot arrives
func readState(t *testing.T, conn *websocket.Conn) Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read state: %v", err)
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		var env struct {
			T string   `msgpack:"t"`
			D Snapshot `msgpack:"d"`
		}
		if err := msgpack.Unmarshal(msg, &env); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if env.T != MsgState {
			t.Fatalf("binary frame of type %q", env.T)
		}
		return env.D
	}
}

func TestWebSocketRejectsMissingTicket(t *testing.T) {
	ts := newTestServer(t, testConfig(ModeFFA))
	_, resp, err := websocket.DefaultDialer.Dial(ts.wsURL(""), nil)
	if err == nil {
		t.Fatal("expected the dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", resp)
	}
	if ts.game.Registry().Count(KindPlayer) != 0 {
		t.Error("no player should be added")
	}
}

func TestWebSocketJoinAndState(t *testing.T) {
	ts := newTestServer(t, testConfig(ModeTDM))
	conn, welcome := ts.dial(t, "Goose")
	if welcome.ID == 0 || welcome.Match != "ws-match" || welcome.Mode != "tdm" {
		t.Errorf("unexpected welcome %+v", welcome)
	}
	if welcome.Team != TeamRed {
		t.Errorf("first tdm player should be red, got %d", welcome.Team)
	}
	if welcome.Width != 6000 || welcome.Height != 6000 {
		t.Errorf("unexpected arena size %gx%g", welcome.Width, welcome.Height)
	}
	ts.waitClients(t, 1)

	ts.game.Step(1.0 / 60)
	ts.game.Step(1.0 / 60)

	s := readState(t, conn)
	if s.Match != "ws-match" || s.Tick != 2 {
		t.Errorf("unexpected snapshot header %+v", s)
	}
	if len(s.Players) != 1 || s.Players[0].ID != welcome.ID || s.Players[0].Name != "Goose" {
		t.Fatalf("expected our player in the snapshot, got %+v", s.Players)
	}
	if !s.Players[0].Alive {
		t.Error("player should have spawned")
	}
}

func TestWebSocketUtilityError(t *testing.T) {
	ts := newTestServer(t, testConfig(ModeFFA))
	conn, _ := ts.dial(t, "a")

	conn.WriteJSON(map[string]any{"t": MsgUtility, "d": map[string]string{"name": "bfg"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if typ != websocket.TextMessage {
			continue
		}
		var env InEnvelope
		json.Unmarshal(msg, &env)
		if env.T == MsgError {
			break
		}
	}
}

func TestWebSocketLeaveRemovesPlayer(t *testing.T) {
	ts := newTestServer(t, testConfig(ModeFFA))
	conn, welcome := ts.dial(t, "a")
	ts.waitClients(t, 1)

	conn.WriteJSON(map[string]string{"t": MsgLeave})
	ts.waitClients(t, 0)

	// the hub hands the removal to the game after unregistering
	deadline := time.Now().Add(2 * time.Second)
	for {
		ts.game.Step(1.0 / 60)
		if _, ok := ts.game.Registry().Player(welcome.ID); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("player should be removed after leaving")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if ts.hub.TotalConns() != 0 {
		t.Errorf("connection should be untracked, have %d", ts.hub.TotalConns())
	}
}

func TestWebSocketSessionFull(t *testing.T) {
	cfg := testConfig(ModeFFA)
	cfg.MaxPlayers = 1
	ts := newTestServer(t, cfg)
	ts.dial(t, "first")

	tok, _ := ts.tickets.Issue("second", TeamNone)
	_, resp, err := websocket.DefaultDialer.Dial(ts.wsURL(tok), nil)
	if err == nil {
		t.Fatal("expected the second dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", resp)
	}
}

func TestDevTicketAndHealth(t *testing.T) {
	ts := newTestServer(t, testConfig(ModeFFA))

	resp, err := http.Get(ts.srv.URL + "/ticket?name=Iceman&team=2")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Ticket string `json:"ticket"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	got, err := ts.tickets.Verify(body.Ticket)
	if err != nil || got.Name != "Iceman" || got.Team != TeamBlue {
		t.Errorf("dev ticket should verify, got %+v, %v", got, err)
	}

	resp, err = http.Get(ts.srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var health map[string]any
	json.NewDecoder(resp.Body).Decode(&health)
	if health["match"] != "ws-match" || health["ended"] != false {
		t.Errorf("unexpected health %v", health)
	}
}

func TestHubConnectionLimits(t *testing.T) {
	hub := NewHub(quietLogger())
	for i := 0; i < maxConnsPerIP; i++ {
		if !hub.CanAccept("10.0.0.1") {
			t.Fatalf("connection %d should be accepted", i)
		}
		hub.TrackConnect("10.0.0.1")
	}
	if hub.CanAccept("10.0.0.1") {
		t.Error("per-ip limit should refuse")
	}
	if !hub.CanAccept("10.0.0.2") {
		t.Error("another ip should still be accepted")
	}
	hub.TrackDisconnect("10.0.0.1")
	if !hub.CanAccept("10.0.0.1") {
		t.Error("a freed slot should be reusable")
	}
}

func TestDecodeBinaryInput(t *testing.T) {
	// mx=-2 my=300 fire+utility thresh=150
	msg := []byte{binaryInputTag, 0xFF, 0xFE, 0x01, 0x2C, 0x05, 0x00, 0x96}
	in, ok := decodeBinaryInput(msg)
	if !ok {
		t.Fatal("expected a valid frame")
	}
	if in.MX != -2 || in.MY != 300 || !in.Fire || in.Boost || !in.Utility || in.Thresh != 150 {
		t.Errorf("unexpected input %+v", in)
	}
	if _, ok := decodeBinaryInput(msg[:7]); ok {
		t.Error("short frame should be rejected")
	}
}

func TestHubDetachAfterStop(t *testing.T) {
	g, _ := newTestGame(t, testConfig(ModeFFA))
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	// more clients than the unregister buffer holds
	const n = 200
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		c := &Client{hub: hub, game: g, playerID: EntityID(1000 + i), send: make(chan []byte, 1)}
		go func() {
			hub.detach(c)
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of %d clients detached after the hub stopped", i, n)
		}
	}

	left := 0
	g.leaves.Range(func(_, _ any) bool {
		left++
		return true
	})
	if left != n {
		t.Errorf("every detached client should leave the game, got %d", left)
	}
}

func TestHubAttachAfterStop(t *testing.T) {
	hub := NewHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	if hub.attach(&Client{hub: hub, send: make(chan []byte, 1)}) {
		t.Error("stopped hub should refuse new clients")
	}
}
