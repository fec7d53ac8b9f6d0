package arena

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestTicketRoundTrip(t *testing.T) {
	tickets := NewTickets([]byte("test-secret-key-that-is-long-enough"))
	tok, err := tickets.Issue("  Maverick ", TeamBlue)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tickets.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Name != "Maverick" || got.Team != TeamBlue {
		t.Errorf("unexpected ticket %+v", got)
	}
}

func TestTicketNameSanitized(t *testing.T) {
	tickets := NewTickets([]byte("secret"))
	tok, _ := tickets.Issue(strings.Repeat("x", 40), TeamNone)
	got, err := tickets.Verify(tok)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Name) != maxNameLen {
		t.Errorf("expected name cut to %d, got %q", maxNameLen, got.Name)
	}

	tok, _ = tickets.Issue("   ", TeamNone)
	if got, _ := tickets.Verify(tok); got.Name != defaultName {
		t.Errorf("blank name should default, got %q", got.Name)
	}
}

func TestSanitizeNameKeepsRunesWhole(t *testing.T) {
	name := sanitizeName(strings.Repeat("é", 20))
	if !utf8.ValidString(name) {
		t.Fatalf("cut split a character: %q", name)
	}
	if n := utf8.RuneCountInString(name); n != maxNameLen {
		t.Errorf("expected %d characters, got %d", maxNameLen, n)
	}
}

func TestTicketWrongSecret(t *testing.T) {
	tok, _ := NewTickets([]byte("secret-one")).Issue("a", TeamRed)
	if _, err := NewTickets([]byte("secret-two")).Verify(tok); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("expected ErrInvalidTicket, got %v", err)
	}
}

func TestTicketExpired(t *testing.T) {
	tickets := &Tickets{secret: []byte("secret"), ttl: -time.Minute}
	tok, err := tickets.Issue("a", TeamNone)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tickets.Verify(tok); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("expired ticket should fail, got %v", err)
	}
}

func TestTicketGarbage(t *testing.T) {
	tickets := NewTickets([]byte("secret"))
	for _, tok := range []string{"", "not.a.jwt", "eyJhbGciOiJub25lIn0.eyJ1c3IiOiJhIn0."} {
		if _, err := tickets.Verify(tok); !errors.Is(err, ErrInvalidTicket) {
			t.Errorf("%q: expected ErrInvalidTicket, got %v", tok, err)
		}
	}
}

func TestNewSecret(t *testing.T) {
	a, err := NewSecret()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewSecret()
	if len(a) != ticketSecretSize || string(a) == string(b) {
		t.Error("secrets should be random and full size")
	}
}
