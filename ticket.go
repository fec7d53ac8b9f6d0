package arena

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ticketExpiry     = 10 * time.Minute
	ticketSecretKey  = "ticket_secret"
	ticketSecretSize = 32
	defaultName      = "Pilot"
)

// Ticket is what a verified join ticket grants
type Ticket struct {
	Name string
	Team TeamID
}

// Tickets issues and verifies HS256 join tickets. The session layer that
// authenticates players issues them; the arena only verifies.
type Tickets struct {
	secret []byte
	ttl    time.Duration
}

// NewTickets creates a ticket authority over secret
func NewTickets(secret []byte) *Tickets {
	return &Tickets{secret: secret, ttl: ticketExpiry}
}

// NewSecret returns fresh random key material
func NewSecret() ([]byte, error) {
	secret := make([]byte, ticketSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate ticket secret: %w", err)
	}
	return secret, nil
}

// LoadOrCreateSecret loads the ticket secret from the database settings, or
// generates and persists a new one if none exists.
func LoadOrCreateSecret(db *DB) ([]byte, error) {
	if h, err := db.GetSetting(ticketSecretKey); err != nil {
		return nil, err
	} else if h != "" {
		if b, err := hex.DecodeString(h); err == nil && len(b) == ticketSecretSize {
			return b, nil
		}
	}
	secret, err := NewSecret()
	if err != nil {
		return nil, err
	}
	if err := db.SetSetting(ticketSecretKey, hex.EncodeToString(secret)); err != nil {
		return nil, fmt.Errorf("persist ticket secret: %w", err)
	}
	return secret, nil
}

// Issue signs a ticket for name and an optional team preference
func (t *Tickets) Issue(name string, team TeamID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"usr":  sanitizeName(name),
		"team": int(team),
		"exp":  now.Add(t.ttl).Unix(),
		"iat":  now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks signature and expiry and returns the ticket's grant
func (t *Tickets) Verify(tokenStr string) (Ticket, error) {
	token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: %w", ErrInvalidTicket, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Ticket{}, ErrInvalidTicket
	}
	name, ok := claims["usr"].(string)
	if !ok {
		return Ticket{}, fmt.Errorf("%w: missing usr claim", ErrInvalidTicket)
	}
	team, _ := claims["team"].(float64)
	return Ticket{Name: sanitizeName(name), Team: TeamID(team)}, nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultName
	}
	if r := []rune(name); len(r) > maxNameLen {
		name = string(r[:maxNameLen])
	}
	return name
}
