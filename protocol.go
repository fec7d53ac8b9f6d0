package arena

import "encoding/json"

// Client -> Server message types
const (
	MsgInput   = "input"
	MsgUtility = "utility" // change the equipped utility
	MsgLeave   = "leave"
)

// Server -> Client message types
const (
	MsgState   = "state"
	MsgWelcome = "welcome"
	MsgEvent   = "event"
	MsgDeath   = "death"
	MsgError   = "error"
)

// binaryInputTag marks the compact 8-byte input frame
const binaryInputTag = 0x01

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string `json:"t" msgpack:"t"`
	Data any    `json:"d,omitempty" msgpack:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is sent by the client at 20Hz
type ClientInput struct {
	MX      float64 `json:"mx"`      // pointer X (world coords)
	MY      float64 `json:"my"`      // pointer Y (world coords)
	Fire    bool    `json:"fire"`    // primary weapon held
	Boost   bool    `json:"boost"`   // boost held
	Utility bool    `json:"utility"` // utility key pressed
	Thresh  float64 `json:"thresh"`  // distance threshold for speed modulation
}

// ToInput converts the wire form to the simulation's input record
func (ci ClientInput) ToInput() Input {
	return Input{
		Aim:     Vec2{ci.MX, ci.MY},
		Fire:    ci.Fire,
		Boost:   ci.Boost,
		Utility: ci.Utility,
		Thresh:  ci.Thresh,
	}
}

// decodeBinaryInput decodes [0x01, mx_hi, mx_lo, my_hi, my_lo, flags, thresh_hi, thresh_lo]
func decodeBinaryInput(msg []byte) (ClientInput, bool) {
	if len(msg) != 8 || msg[0] != binaryInputTag {
		return ClientInput{}, false
	}
	flags := msg[5]
	return ClientInput{
		MX:      float64(int16(uint16(msg[1])<<8 | uint16(msg[2]))),
		MY:      float64(int16(uint16(msg[3])<<8 | uint16(msg[4]))),
		Fire:    flags&0x01 != 0,
		Boost:   flags&0x02 != 0,
		Utility: flags&0x04 != 0,
		Thresh:  float64(uint16(msg[6])<<8 | uint16(msg[7])),
	}, true
}

// UtilityMsg asks to equip a different utility
type UtilityMsg struct {
	Name string `json:"name"`
}

// PlayerState is broadcast per player each tick
type PlayerState struct {
	ID        EntityID `json:"id" msgpack:"id"`
	Name      string   `json:"n" msgpack:"n"`
	X         float64  `json:"x" msgpack:"x"`
	Y         float64  `json:"y" msgpack:"y"`
	R         float64  `json:"r" msgpack:"r"` // rotation radians
	HP        int      `json:"hp" msgpack:"hp"`
	MaxHP     int      `json:"mhp" msgpack:"mhp"`
	Team      TeamID   `json:"tm,omitempty" msgpack:"tm,omitempty"`
	Kills     int      `json:"k" msgpack:"k"`
	Deaths    int      `json:"dt" msgpack:"dt"`
	Score     int      `json:"sc" msgpack:"sc"`
	Ammo      int      `json:"am" msgpack:"am"`
	Alive     bool     `json:"a" msgpack:"a"`
	Boost     bool     `json:"b,omitempty" msgpack:"b,omitempty"`
	Rooted    bool     `json:"rt,omitempty" msgpack:"rt,omitempty"`
	Utility   string   `json:"u,omitempty" msgpack:"u,omitempty"`
	UtilityCD float64  `json:"ucd,omitempty" msgpack:"ucd,omitempty"`
}

// ProjectileState is broadcast per projectile
type ProjectileState struct {
	ID    EntityID `json:"id" msgpack:"id"`
	X     float64  `json:"x" msgpack:"x"`
	Y     float64  `json:"y" msgpack:"y"`
	R     float64  `json:"r" msgpack:"r"`
	Owner EntityID `json:"o" msgpack:"o"`
}

// ObstacleState is broadcast per obstacle
type ObstacleState struct {
	ID    EntityID `json:"id" msgpack:"id"`
	X     float64  `json:"x" msgpack:"x"`
	Y     float64  `json:"y" msgpack:"y"`
	R     float64  `json:"r" msgpack:"r"`
	Team  TeamID   `json:"tm,omitempty" msgpack:"tm,omitempty"`
	Owner EntityID `json:"o,omitempty" msgpack:"o,omitempty"`
}

// ObjectiveState covers zones, flags, workshops and headquarters
type ObjectiveState struct {
	ID         EntityID `json:"id" msgpack:"id"`
	Kind       string   `json:"k" msgpack:"k"`
	X          float64  `json:"x" msgpack:"x"`
	Y          float64  `json:"y" msgpack:"y"`
	R          float64  `json:"r" msgpack:"r"`
	Team       TeamID   `json:"tm,omitempty" msgpack:"tm,omitempty"`
	Progress   float64  `json:"p,omitempty" msgpack:"p,omitempty"` // percent
	Controller EntityID `json:"c,omitempty" msgpack:"c,omitempty"`
	Capturer   EntityID `json:"cp,omitempty" msgpack:"cp,omitempty"`
	Carrier    EntityID `json:"ca,omitempty" msgpack:"ca,omitempty"`
	AtBase     bool     `json:"ab,omitempty" msgpack:"ab,omitempty"`
	HP         int      `json:"hp,omitempty" msgpack:"hp,omitempty"`
	MaxHP      int      `json:"mhp,omitempty" msgpack:"mhp,omitempty"`
}

// UtilityState covers every ability-spawned entity
type UtilityState struct {
	ID    EntityID `json:"id" msgpack:"id"`
	Kind  string   `json:"k" msgpack:"k"`
	X     float64  `json:"x" msgpack:"x"`
	Y     float64  `json:"y" msgpack:"y"`
	R     float64  `json:"r" msgpack:"r"`
	Rot   float64  `json:"rot,omitempty" msgpack:"rot,omitempty"`
	EX    float64  `json:"ex,omitempty" msgpack:"ex,omitempty"` // beam end
	EY    float64  `json:"ey,omitempty" msgpack:"ey,omitempty"`
	Owner EntityID `json:"o" msgpack:"o"`
	Team  TeamID   `json:"tm,omitempty" msgpack:"tm,omitempty"`
	HP    int      `json:"hp,omitempty" msgpack:"hp,omitempty"`
	Link  EntityID `json:"l,omitempty" msgpack:"l,omitempty"`
	Armed bool     `json:"ar,omitempty" msgpack:"ar,omitempty"`
	Label string   `json:"lb,omitempty" msgpack:"lb,omitempty"`
}

// TeamScore is one team's standing
type TeamScore struct {
	Team  TeamID `json:"tm" msgpack:"tm"`
	Score int    `json:"sc" msgpack:"sc"`
}

// Snapshot is the full per-tick state broadcast
type Snapshot struct {
	Match       string            `json:"match" msgpack:"match"`
	Tick        uint64            `json:"tick" msgpack:"tick"`
	Time        int64             `json:"time" msgpack:"time"` // unix ms
	Mode        string            `json:"mode" msgpack:"mode"`
	TimeLeft    float64           `json:"tl,omitempty" msgpack:"tl,omitempty"`
	Players     []PlayerState     `json:"p" msgpack:"p"`
	Projectiles []ProjectileState `json:"pr" msgpack:"pr"`
	Obstacles   []ObstacleState   `json:"ob" msgpack:"ob"`
	Objectives  []ObjectiveState  `json:"obj" msgpack:"obj"`
	Utilities   []UtilityState    `json:"ut" msgpack:"ut"`
	Teams       []TeamScore       `json:"teams,omitempty" msgpack:"teams,omitempty"`
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID     EntityID `json:"id"`
	Team   TeamID   `json:"tm"`
	Match  string   `json:"match"`
	Mode   string   `json:"mode"`
	Width  float64  `json:"w"`
	Height float64  `json:"h"`
}

// DeathMsg notifies a player they died
type DeathMsg struct {
	KillerID   EntityID `json:"kid"`
	KillerName string   `json:"kn"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
