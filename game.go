package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Sink receives everything the simulation publishes. Payloads are
// envelopes; wire encoding is the sink's concern.
type Sink interface {
	Send(recipient EntityID, env Envelope)
	Broadcast(env Envelope)
}

type discardSink struct{}

func (discardSink) Send(EntityID, Envelope) {}
func (discardSink) Broadcast(Envelope)      {}

// Options configures a Game
type Options struct {
	Config   MatchConfig
	MatchID  string // generated when empty
	Logger   *slog.Logger
	Sink     Sink          // defaults to discarding everything
	Recorder EventRecorder // optional
	Engine   Engine        // defaults to a CircleEngine over the arena
}

// Game is one authoritative match. A single goroutine runs the tick (Run or
// Step); AddPlayer, RemovePlayer, HandleInput and SetUtility may be called
// from any goroutine and only hand data to the next tick.
type Game struct {
	cfg      MatchConfig
	bounds   Rect
	matchID  string
	log      *slog.Logger
	sink     Sink
	recorder EventRecorder

	reg        *Registry
	world      *PhysicsWorld
	ids        *IDAllocator
	terrain    *Terrain
	spawns     *SpawnSelector
	resolver   *Resolver
	dispatcher *Dispatcher

	// written by network goroutines, drained at the start of each tick
	inputs    sync.Map // EntityID -> Input
	utilities sync.Map // EntityID -> Ability
	leaves    sync.Map // EntityID -> struct{}

	// simulation goroutine only
	ev             events
	match          MatchState
	broadcastEvery uint64

	tick  atomic.Uint64
	ended atomic.Bool
}

// NewGame validates the config, generates the map and places its content
func NewGame(opts Options) (*Game, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	cfg := opts.Config
	if opts.MatchID == "" {
		opts.MatchID = uuid.NewString()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("match", opts.MatchID)
	sink := opts.Sink
	if sink == nil {
		sink = discardSink{}
	}
	bounds := cfg.Bounds()
	engine := opts.Engine
	if engine == nil {
		engine = NewCircleEngine(bounds)
	}

	g := &Game{
		cfg:            cfg,
		bounds:         bounds,
		matchID:        opts.MatchID,
		log:            log,
		sink:           sink,
		recorder:       opts.Recorder,
		reg:            NewRegistry(),
		world:          NewPhysicsWorld(engine),
		ids:            NewIDAllocator(),
		match:          NewMatchState(cfg),
		broadcastEvery: uint64(max(1, cfg.TickRate/cfg.BroadcastRate)),
	}
	g.ev.match = g.matchID

	g.terrain = GenerateTerrain(TerrainConfig{Bounds: bounds, Seed: cfg.Seed}, log)
	g.terrain.SetBlockers(g.structureAt)
	g.spawns = NewSpawnSelector(g.terrain, SubsystemRand(cfg.Seed, "spawn"), log)
	g.resolver = NewResolver(g.reg, g.world, &g.ev, log)
	g.dispatcher = NewDispatcher(g.reg, g.world, g.ids, g.terrain, g.resolver, log)

	if err := NewSpawner(g.reg, g.world, g.ids, g.terrain, g.spawns, log).Setup(cfg); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	return g, nil
}

// structureAt reports whether a registered static solid overlaps the circle
func (g *Game) structureAt(p Vec2, r float64) bool {
	circle := Circle{Center: p, Radius: r}
	for _, o := range g.reg.Obstacles() {
		if o.Active() && circle.Overlaps(o.Circle()) {
			return true
		}
	}
	for _, h := range g.reg.Headquarters() {
		if h.Active() && circle.Overlaps(Circle{h.pos, h.Radius}) {
			return true
		}
	}
	for _, t := range g.reg.Turrets() {
		if t.Active() && circle.Overlaps(Circle{t.pos, t.Radius}) {
			return true
		}
	}
	for _, l := range g.reg.Lasers() {
		if l.Active() && circle.Overlaps(Circle{l.pos, l.Radius}) {
			return true
		}
	}
	return false
}

// Run drives the tick loop until ctx is done or the match ends
func (g *Game) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.cfg.TickDuration())
	defer ticker.Stop()

	g.log.Info("match started", "mode", g.cfg.Mode, "seed", g.cfg.Seed,
		"width", g.cfg.WorldWidth, "height", g.cfg.WorldHeight)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			g.log.Info("match stopped", "tick", g.tick.Load())
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			g.Step(dt)
			if g.ended.Load() {
				return nil
			}
		}
	}
}

// Step runs one tick. A panic inside the tick is logged and swallowed so
// the next tick proceeds; whatever the failed tick already changed stays.
func (g *Game) Step(dt float64) {
	if g.ended.Load() {
		return
	}
	tick := g.tick.Add(1)
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("tick failed", "tick", tick, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	g.step(tick, ClampDelta(dt))
}

func (g *Game) step(tick uint64, dt float64) {
	g.ev.reset(tick)

	g.drainRequests()
	g.applyInputs()
	g.updatePlayers(dt)
	g.updateUtilities(dt)

	contacts := g.stepPhysics(dt)
	g.resolver.Resolve(contacts, dt)

	g.updateObjectives(dt)
	g.scoreEvents()
	g.advanceMatch(dt)

	sweep(g.reg, g.world)
	g.publish(tick)
}

// AddPlayer registers a new player who spawns on the next tick. team is
// honoured in team modes when it names a real team, otherwise the player
// is balanced onto the smaller team.
func (g *Game) AddPlayer(name string, team TeamID) (EntityID, TeamID, error) {
	if g.ended.Load() {
		return 0, TeamNone, ErrMatchEnded
	}
	if g.reg.Count(KindPlayer) >= g.cfg.MaxPlayers {
		return 0, TeamNone, fmt.Errorf("add %q: %w", name, ErrSessionFull)
	}
	switch {
	case !g.cfg.IsTeamMode():
		team = TeamNone
	case team != TeamRed && team != TeamBlue:
		team = g.match.AssignTeam(g.reg.Players())
	}

	p := NewPlayer(g.ids.Next(), name, team, g.bounds.Center())
	p.Alive = false
	if g.cfg.DefaultUtility != "" {
		if a, err := LookupAbility(g.cfg.DefaultUtility); err == nil {
			p.Utility = a
		}
	}
	if err := register(g.reg, g.world, p); err != nil {
		return 0, TeamNone, err
	}
	g.log.Info("player joined", "player", p.id, "name", name, "team", team)
	return p.id, team, nil
}

// RemovePlayer schedules a player's removal at the start of the next tick.
// Until then the player entity stays in the registry and the physics world.
func (g *Game) RemovePlayer(id EntityID) {
	g.leaves.Store(id, struct{}{})
}

// HandleInput records the latest input for a player
func (g *Game) HandleInput(id EntityID, in Input) {
	in.Thresh = Clamp(in.Thresh, moveDeadZone, 400)
	g.inputs.Store(id, in)
}

// SetUtility asks to equip a different utility from the next tick on
func (g *Game) SetUtility(id EntityID, name string) error {
	a, err := LookupAbility(name)
	if err != nil {
		return err
	}
	if !g.cfg.AbilityAllowed(name) {
		return fmt.Errorf("%q not allowed in %s: %w", name, g.cfg.Mode, ErrUnknownAbility)
	}
	g.utilities.Store(id, a)
	return nil
}

func (g *Game) drainRequests() {
	g.leaves.Range(func(k, _ any) bool {
		id := k.(EntityID)
		g.leaves.Delete(id)
		g.inputs.Delete(id)
		g.utilities.Delete(id)
		if e, ok := g.reg.Get(id); ok && e.Kind() == KindPlayer {
			unregister(g.reg, g.world, id)
			p := e.(*Player)
			g.ev.emit(EventPlayerLeft, id, 0, p.team, p.Score)
			g.log.Info("player left", "player", id, "name", p.Name)
		}
		return true
	})
	g.utilities.Range(func(k, v any) bool {
		g.utilities.Delete(k)
		if p, ok := g.reg.Player(k.(EntityID)); ok {
			p.Utility = v.(Ability)
		}
		return true
	})
}

func (g *Game) applyInputs() {
	g.inputs.Range(func(k, v any) bool {
		if p, ok := g.reg.Player(k.(EntityID)); ok {
			p.SetInput(v.(Input))
		}
		return true
	})
}

func (g *Game) updatePlayers(dt float64) {
	players := g.reg.Players()
	for _, p := range players {
		if !p.Active() {
			continue
		}
		p.Update(dt)
		if p.ReadyToRespawn() {
			g.respawn(p, players)
		}
		if p.CanFire() && g.reg.Count(KindProjectile) < maxProjectiles {
			p.consumeShot()
			g.spawn(NewProjectile(g.ids.Next(), p))
		}
		if p.WantsUtility() {
			g.activate(p)
		}
	}
}

func (g *Game) respawn(p *Player, players []*Player) {
	var others, mates []Vec2
	for _, o := range players {
		if o == p || !o.Alive || !o.Active() {
			continue
		}
		others = append(others, o.pos)
		if p.team != TeamNone && o.team == p.team {
			mates = append(mates, o.pos)
		}
	}
	pos := g.spawns.SpawnPoint(p.team, others, mates)
	p.Respawn(pos)
	g.world.SetPosition(p.Body(), pos)
	if !p.spawned {
		p.spawned = true
		g.ev.emit(EventPlayerJoined, p.id, 0, p.team, 0)
	}
}

func (g *Game) activate(p *Player) {
	e, err := g.dispatcher.Activate(ActivationFor(p))
	switch {
	case errors.Is(err, ErrPlacementBlocked):
		g.ev.emit(EventCooldownRefunded, p.id, 0, p.team, 0)
		g.log.Debug("utility placement blocked", "player", p.id, "utility", p.Utility.Name())
	case err != nil:
		g.log.Warn("utility activation failed", "player", p.id, "err", err)
	default:
		g.log.Debug("utility activated", "player", p.id, "utility", p.Utility.Name(), "entity", e.ID())
	}
}

// spawn registers an entity created during the tick
func (g *Game) spawn(e Entity) {
	if err := register(g.reg, g.world, e); err != nil {
		g.log.Error("spawn failed", "kind", e.Kind(), "id", e.ID(), "err", err)
	}
}

func (g *Game) updateUtilities(dt float64) {
	for _, e := range WithCapability[HasLifespan](g.reg) {
		if e.Active() {
			e.Age(dt)
		}
	}

	players := g.reg.Players()
	for _, t := range g.reg.Turrets() {
		if !t.Active() {
			continue
		}
		if dir, fire := t.Update(dt, players); fire && g.reg.Count(KindProjectile) < maxProjectiles {
			g.spawn(NewTurretProjectile(g.ids.Next(), t, dir))
		}
	}

	for _, f := range g.reg.Fields() {
		if !f.Active() {
			continue
		}
		dmg, heal := f.Pulse(dt)
		for _, p := range players {
			if !p.Alive || !f.Covers(p) {
				continue
			}
			if hostile(f.team, f.OwnerID, p.team, p.id) {
				g.resolver.DamagePlayer(f.OwnerID, p, dmg)
			} else {
				p.Heal(heal)
			}
		}
	}

	projectiles := g.reg.Projectiles()
	for _, l := range g.reg.Lasers() {
		if l.Active() {
			l.Zap(dt, projectiles)
		}
	}
}

// stepPhysics pushes velocities, steps the world and pulls positions back
func (g *Game) stepPhysics(dt float64) []Contact {
	players := g.reg.Players()
	projectiles := g.reg.Projectiles()
	nets := g.reg.Nets()

	g.world.Sync(func(e Engine) {
		for _, p := range players {
			e.SetVelocity(p.Body(), p.Vel)
		}
		for _, pr := range projectiles {
			e.SetVelocity(pr.Body(), pr.Vel)
		}
		for _, n := range nets {
			e.SetVelocity(n.Body(), n.Vel)
		}
	})

	contacts, _ := g.world.Step(dt)

	edge := func(r float64) Rect { return g.bounds.Inset(r + 0.5) }
	g.world.Sync(func(e Engine) {
		for _, p := range players {
			if pos, ok := e.Position(p.Body()); ok {
				p.setPosition(pos)
			}
		}
		for _, pr := range projectiles {
			if pos, ok := e.Position(pr.Body()); ok {
				pr.setPosition(pos)
				if !edge(ProjectileRadius).Contains(pos) {
					pr.Deactivate()
				}
			}
		}
		for _, n := range nets {
			if pos, ok := e.Position(n.Body()); ok {
				n.setPosition(pos)
				if !edge(n.Radius).Contains(pos) {
					n.Deactivate()
				}
			}
		}
	})
	return contacts
}

// scoreEvents turns this tick's discrete events into match score
func (g *Game) scoreEvents() {
	for _, ev := range g.ev.list {
		switch ev.Type {
		case EventKill:
			if g.cfg.Mode == ModeTDM {
				g.match.AddScore(ev.Team, 1)
			}
		case EventHQDestroyed:
			g.match.AddScore(opponent(ev.Team), SiegeHQScore)
		}
	}
}

func opponent(t TeamID) TeamID {
	switch t {
	case TeamRed:
		return TeamBlue
	case TeamBlue:
		return TeamRed
	}
	return TeamNone
}

func (g *Game) advanceMatch(dt float64) {
	var top *Player
	for _, p := range g.reg.Players() {
		if top == nil || p.Score > top.Score {
			top = p
		}
	}
	if !g.match.Advance(dt, top) {
		return
	}
	value := 0
	if g.cfg.IsTeamMode() {
		value = g.match.Teams[g.match.Winner]
	} else if top != nil {
		value = top.Score
	}
	g.ev.emit(EventMatchEnded, g.match.WinnerID, 0, g.match.Winner, value)
	g.ended.Store(true)
	g.log.Info("match ended", "winner_team", g.match.Winner, "winner", g.match.WinnerID,
		"red", g.match.Teams[TeamRed], "blue", g.match.Teams[TeamBlue], "elapsed", g.match.Elapsed)
}

// publish emits this tick's events and, on broadcast ticks, the snapshot.
// It runs after every mutation of the tick.
func (g *Game) publish(tick uint64) {
	for _, ev := range g.ev.list {
		if g.recorder != nil {
			g.recorder.Record(ev)
		}
		switch ev.Type {
		case EventCooldownRefunded:
			g.sink.Send(ev.Actor, Envelope{T: MsgEvent, Data: ev})
			continue
		case EventDeath:
			msg := DeathMsg{KillerID: ev.Actor}
			if k, ok := g.reg.Player(ev.Actor); ok {
				msg.KillerName = k.Name
			}
			g.sink.Send(ev.Target, Envelope{T: MsgDeath, Data: msg})
		}
		g.sink.Broadcast(Envelope{T: MsgEvent, Data: ev})
	}
	if tick%g.broadcastEvery == 0 || g.ended.Load() {
		g.sink.Broadcast(Envelope{T: MsgState, Data: g.Snapshot()})
	}
}

// Snapshot builds the visible state. Call it from the simulation goroutine.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Match:       g.matchID,
		Tick:        g.tick.Load(),
		Time:        time.Now().UnixMilli(),
		Mode:        g.cfg.Mode.String(),
		Players:     make([]PlayerState, 0, g.reg.Count(KindPlayer)),
		Projectiles: make([]ProjectileState, 0, g.reg.Count(KindProjectile)),
		Obstacles:   make([]ObstacleState, 0, g.reg.Count(KindObstacle)),
		Teams:       g.match.TeamScores(),
	}
	if g.cfg.TimeLimit > 0 {
		s.TimeLeft = round1(max(0, g.match.TimeLeft))
	}
	for _, e := range g.reg.All() {
		if !e.Active() {
			continue
		}
		switch v := e.(type) {
		case *Player:
			s.Players = append(s.Players, v.ToState())
		case *Projectile:
			s.Projectiles = append(s.Projectiles, v.ToState())
		case *Obstacle:
			s.Obstacles = append(s.Obstacles, v.ToState())
		case interface{ ToState() ObjectiveState }:
			s.Objectives = append(s.Objectives, v.ToState())
		case interface{ ToState() UtilityState }:
			s.Utilities = append(s.Utilities, v.ToState())
		}
	}
	return s
}

// Tick returns the number of ticks run so far
func (g *Game) Tick() uint64 { return g.tick.Load() }

// Ended reports whether the match reached a limit
func (g *Game) Ended() bool { return g.ended.Load() }

// MatchID returns the match identifier
func (g *Game) MatchID() string { return g.matchID }

// Config returns the match configuration
func (g *Game) Config() MatchConfig { return g.cfg }

// Registry returns the entity registry
func (g *Game) Registry() *Registry { return g.reg }

// World returns the physics world adapter
func (g *Game) World() *PhysicsWorld { return g.world }

// Terrain returns the generated terrain
func (g *Game) Terrain() *Terrain { return g.terrain }

// Match returns a copy of the score and clock. Simulation goroutine only.
func (g *Game) Match() MatchState { return g.match }
