package arena

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType names a discrete gameplay event
type EventType string

const (
	EventKill              EventType = "kill"
	EventDeath             EventType = "death"
	EventObjectiveCaptured EventType = "objective_captured"
	EventFlagTaken         EventType = "flag_taken"
	EventFlagDropped       EventType = "flag_dropped"
	EventFlagReturned      EventType = "flag_returned"
	EventFlagCaptured      EventType = "flag_captured"
	EventHQDestroyed       EventType = "hq_destroyed"
	EventWorkshopCrafted   EventType = "workshop_crafted"
	EventCooldownRefunded  EventType = "cooldown_refunded"
	EventPlayerJoined      EventType = "player_joined"
	EventPlayerLeft        EventType = "player_left"
	EventMatchEnded        EventType = "match_ended"
)

// Event is a typed, timestamped record of something that happened during a
// tick. IDs are ULIDs so they sort by creation time.
type Event struct {
	ID     ulid.ULID `json:"id" msgpack:"id"`
	Match  string    `json:"match,omitempty" msgpack:"match,omitempty"`
	Type   EventType `json:"type" msgpack:"type"`
	Tick   uint64    `json:"tick" msgpack:"tick"`
	Time   time.Time `json:"time" msgpack:"time"`
	Actor  EntityID  `json:"actor,omitempty" msgpack:"actor,omitempty"`   // killer, capturer, carrier
	Target EntityID  `json:"target,omitempty" msgpack:"target,omitempty"` // victim, objective, flag
	Team   TeamID    `json:"team,omitempty" msgpack:"team,omitempty"`
	Value  int       `json:"value,omitempty" msgpack:"value,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time
func NewEvent(typ EventType, tick uint64) Event {
	now := time.Now().UTC()
	return Event{
		ID:   ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()),
		Type: typ,
		Tick: tick,
		Time: now,
	}
}

// EventRecorder persists events outside the tick. Record must not block.
type EventRecorder interface {
	Record(ev Event)
}

// events accumulates the events of one tick
type events struct {
	tick  uint64
	match string
	list  []Event
}

func (e *events) reset(tick uint64) {
	e.tick = tick
	e.list = e.list[:0]
}

func (e *events) emit(typ EventType, actor, target EntityID, team TeamID, value int) {
	ev := NewEvent(typ, e.tick)
	ev.Match = e.match
	ev.Actor = actor
	ev.Target = target
	ev.Team = team
	ev.Value = value
	e.list = append(e.list, ev)
}
