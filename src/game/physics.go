package game

import (
	"fmt"

	"elevjudge/src/types"
	"elevjudge/src/utils"
)

// resolve advances the session one tick. Every car moves and unloads before any person boards,
// so nobody boards and alights in the same tick.
func (g *Game) resolve() {
	for _, name := range g.order {
		if !g.moveElevator(name) {
			return
		}
	}
	g.people.each(g.resolvePerson)
}

// moveElevator integrates one car and lets out everybody who reached their floor.
// It returns false when the car crashed through the floor or the roof.
func (g *Game) moveElevator(name string) bool {
	e := g.elevators[name]
	e.Integrate(g.cfg.Acceleration)

	if !e.InBuilding(g.level.FloorsCount) {
		g.log.Error("Elevator left the building",
			"elevator", name,
			"height", e.Height,
			"speed", e.Speed,
			"occupantsLost", len(e.Occupants))
		g.fail(Crashed, fmt.Errorf("%w: %s at height %d", ErrCrash, name, e.Height))
		return false
	}

	floor, aligned := e.Floor()
	if !aligned || e.Speed != 0 {
		return true
	}
	left := e.Alight(func(id types.PersonID) bool {
		p := g.people.get(id)
		return p != nil && p.DstFloor == floor
	})
	for _, id := range left {
		if err := g.people.get(id).Arrive(); err != nil {
			g.log.Error("Alighting failed", "err", err)
		}
	}
	return true
}

func (g *Game) resolvePerson(p *types.Person) bool {
	switch {
	case p.State == types.Arrived:
		gain := g.tripScore(p)
		g.score += gain
		g.log.Info("Person arrived",
			"person", p.ID,
			"elevator", p.Elevator,
			"src", p.SrcFloor,
			"dst", p.DstFloor,
			"patience", p.Patience,
			"gain", gain,
			"score", g.score)
		g.drop(p.ID)

	case p.State == types.Riding:
		// patience is frozen while riding

	case p.Patience <= 0:
		if err := p.GiveUp(); err != nil {
			g.log.Error("Giving up failed", "err", err)
		}
		g.log.Info("Person gave up", "person", p.ID, "src", p.SrcFloor, "dst", p.DstFloor, "elevator", p.Elevator)
		g.drop(p.ID)

	case p.State == types.Calling:
		g.fail(Unanswered, fmt.Errorf("%w: person %d at floor %d", ErrUnanswered, p.ID, p.SrcFloor))
		return false

	default:
		e, known := g.elevators[p.Elevator]
		if known && e.StoppedAt(p.SrcFloor) {
			if !e.Full() {
				if err := p.Board(); err != nil {
					g.log.Error("Boarding failed", "err", err)
					return true
				}
				e.Board(p.ID)
				g.log.Debug("Person boarded", "person", p.ID, "elevator", e.Name, "floor", p.SrcFloor, "occupants", len(e.Occupants))
				return true
			}
			g.log.Debug("Elevator full, boarding refused", "person", p.ID, "elevator", e.Name)
		}
		p.Patience--
	}
	return true
}

// tripScore rewards distance travelled and patience left.
func (g *Game) tripScore(p *types.Person) uint64 {
	gain := int(utils.AbsDiff(p.DstFloor, p.SrcFloor))*g.cfg.FloorScoreWeight + p.Patience*g.cfg.PatienceScoreWeight
	if gain < 0 {
		return 0
	}
	return uint64(gain)
}
