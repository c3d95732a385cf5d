package game

import "elevjudge/src/types"

// spawnEventsForTurn moves the events of turn out of the timeline and into the arena.
func (g *Game) spawnEventsForTurn(turn uint) {
	events, ok := g.level.Take(turn)
	if !ok {
		return
	}
	for _, ev := range events {
		for range ev.PeopleCount {
			g.people.add(types.NewPerson(ev))
		}
		g.log.Debug("Spawned people",
			"turn", turn,
			"count", ev.PeopleCount,
			"src", ev.SrcFloor,
			"dst", ev.DstFloor,
			"patience", ev.Patience)
	}
}
