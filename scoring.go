package arena

import "math"

// updateObjectives is the level-triggered objective pass. It runs once per
// tick after collisions and only looks at who is in range right now.
func (g *Game) updateObjectives(dt float64) {
	players := g.reg.Players()
	g.updateZones(players, dt)
	g.updateFlags(players, dt)
	g.updateWorkshops(players, dt)
}

func (g *Game) updateZones(players []*Player, dt float64) {
	byTeam := g.cfg.IsTeamMode()
	var occupants []*Player
	for _, z := range g.reg.Zones() {
		if !z.Active() {
			continue
		}
		occupants = occupants[:0]
		for _, p := range players {
			if p.Alive && p.Active() && z.InRange(p.pos) {
				occupants = append(occupants, p)
			}
		}
		if z.Step(occupants, dt, byTeam) {
			g.ev.emit(EventObjectiveCaptured, z.Controller, z.id, z.ControlTeam, 0)
			g.log.Debug("zone captured", "zone", z.id, "player", z.Controller, "team", z.ControlTeam)
		}
		if z.Controller == 0 {
			continue
		}
		interval := KothPointInterval
		if z.Type == ZoneStrategic {
			interval = ConquestPointInterval
		}
		z.holdT += dt
		if n := int(z.holdT / interval); n > 0 {
			z.holdT -= float64(n) * interval
			g.award(z.ControlTeam, z.Controller, n)
		}
	}
}

func (g *Game) updateFlags(players []*Player, dt float64) {
	flags := g.reg.Flags()
	for _, f := range flags {
		if !f.Active() {
			continue
		}
		if f.Carrier != 0 {
			g.carryFlag(f, flags, dt)
			continue
		}
		for _, p := range players {
			if g.touchFlag(f, p) {
				break
			}
		}
	}
	g.world.Sync(func(e Engine) {
		for _, f := range flags {
			e.SetPosition(f.Body(), f.pos)
		}
	})
}

// carryFlag moves a carried flag with its carrier and scores it
func (g *Game) carryFlag(f *Flag, flags []*Flag, dt float64) {
	p, ok := g.reg.Player(f.Carrier)
	if !ok || !p.Alive || !p.Active() {
		at := f.pos
		if ok {
			at = p.pos
			p.Carrying = 0
		}
		carrier := f.Carrier
		f.drop(at)
		f.holdT = 0
		g.ev.emit(EventFlagDropped, carrier, f.id, f.team, 0)
		return
	}
	f.pos = p.pos

	if f.IsBall() {
		f.holdT += dt
		if n := int(f.holdT / OddballPointInterval); n > 0 {
			f.holdT -= float64(n) * OddballPointInterval
			g.award(p.team, p.id, n)
		}
		return
	}

	for _, own := range flags {
		if own.team != p.team || !own.Active() || !own.AtBase() {
			continue
		}
		if p.pos.Dist(own.Home) <= FlagReturnRadius {
			f.returnHome()
			p.Carrying = 0
			g.award(p.team, p.id, 1)
			g.ev.emit(EventFlagCaptured, p.id, f.id, p.team, 1)
		}
		return
	}
}

// touchFlag applies one player's contact with a free flag and reports
// whether the flag changed state.
func (g *Game) touchFlag(f *Flag, p *Player) bool {
	if !p.Alive || !p.Active() {
		return false
	}
	reach := f.Radius + PlayerRadius
	if p.pos.DistSq(f.pos) > reach*reach {
		return false
	}
	switch {
	case f.IsBall() || p.team != f.team:
		if p.Carrying != 0 {
			return false
		}
		f.pickUp(p)
		f.holdT = 0
		g.ev.emit(EventFlagTaken, p.id, f.id, p.team, 0)
		return true
	case f.Dropped:
		f.returnHome()
		g.ev.emit(EventFlagReturned, p.id, f.id, p.team, 0)
		return true
	}
	return false
}

func (g *Game) updateWorkshops(players []*Player, dt float64) {
	var crafters []*Player
	for _, w := range g.reg.Workshops() {
		if !w.Active() {
			continue
		}
		crafters = crafters[:0]
		for _, p := range players {
			if p.Alive && p.Active() && p.team == w.team && p.pos.DistSq(w.pos) <= w.Radius*w.Radius {
				crafters = append(crafters, p)
			}
		}
		if len(crafters) == 0 {
			w.Progress = math.Max(0, w.Progress-dt)
			continue
		}
		w.Progress += dt
		if w.Progress < w.CraftTime {
			continue
		}
		w.Progress = 0
		for _, p := range crafters {
			p.UtilityCD = 0
		}
		g.ev.emit(EventWorkshopCrafted, crafters[0].id, w.id, w.team, len(crafters))
	}
}

// award credits n points to a player and, in team modes, to their team
func (g *Game) award(team TeamID, player EntityID, n int) {
	if p, ok := g.reg.Player(player); ok {
		p.Score += n
	}
	if g.cfg.IsTeamMode() {
		g.match.AddScore(team, n)
	}
}
