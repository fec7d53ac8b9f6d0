package arena

import "errors"

var (
	// ErrDuplicateEntity means an entity id was registered twice
	ErrDuplicateEntity = errors.New("duplicate entity id")
	// ErrPlacementBlocked means a placement-sensitive utility had no room
	ErrPlacementBlocked = errors.New("placement blocked")
	// ErrUnknownAbility means an ability name is not in the catalog
	ErrUnknownAbility = errors.New("unknown ability")
	// ErrUnknownPlayer means a player id is not (or no longer) registered
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrInvalidConfig wraps every match configuration problem
	ErrInvalidConfig = errors.New("invalid match config")
	// ErrSessionFull means the match has no free player slot
	ErrSessionFull = errors.New("session full")
	// ErrMatchEnded means the match no longer accepts players
	ErrMatchEnded = errors.New("match ended")
	// ErrInvalidTicket means a join ticket failed verification
	ErrInvalidTicket = errors.New("invalid join ticket")
)
