package arena

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RouteOptions configures the HTTP surface of one match
type RouteOptions struct {
	// DevTickets exposes /ticket so local clients can mint their own tickets
	DevTickets bool
}

// SetupRoutes configures HTTP routes for a game
func SetupRoutes(hub *Hub, game *Game, tickets *Tickets, opts RouteOptions) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"match":   game.MatchID(),
			"tick":    game.Tick(),
			"clients": hub.ClientCount(),
			"ended":   game.Ended(),
		})
	})

	if opts.DevTickets {
		mux.HandleFunc("/ticket", func(w http.ResponseWriter, r *http.Request) {
			team, _ := strconv.Atoi(r.URL.Query().Get("team"))
			tok, err := tickets.Issue(r.URL.Query().Get("name"), TeamID(team))
			if err != nil {
				http.Error(w, "could not issue ticket", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"ticket": tok})
		})
	}

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}
		ticket, err := tickets.Verify(r.URL.Query().Get("ticket"))
		if err != nil {
			http.Error(w, "invalid ticket", http.StatusUnauthorized)
			return
		}
		id, team, err := game.AddPlayer(ticket.Name, ticket.Team)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrSessionFull) || errors.Is(err, ErrMatchEnded) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, err.Error(), status)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn("upgrade failed", "addr", ip, "err", err)
			game.RemovePlayer(id)
			return
		}
		hub.TrackConnect(ip)

		client := NewClient(hub, game, conn, id, ip)
		cfg := game.Config()
		client.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
			ID:     id,
			Team:   team,
			Match:  game.MatchID(),
			Mode:   cfg.Mode.String(),
			Width:  cfg.WorldWidth,
			Height: cfg.WorldHeight,
		}})
		if !hub.attach(client) {
			hub.TrackDisconnect(ip)
			game.RemovePlayer(id)
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}
