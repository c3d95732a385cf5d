package game

import (
	"bufio"
	"fmt"

	"elevjudge/src/elev"
	"elevjudge/src/types"

	"github.com/tiendc/go-deepcopy"
)

// Snapshot is a detached copy of the session. Elevators are in ascending name order, people in arena order.
type Snapshot struct {
	Turn      uint
	Score     uint64
	Elevators []*elev.Elevator
	People    []*types.Person
}

func (g *Game) Snapshot() Snapshot {
	live := Snapshot{Turn: g.turn, Score: g.score}
	for _, name := range g.order {
		live.Elevators = append(live.Elevators, g.elevators[name])
	}
	g.people.each(func(p *types.Person) bool {
		live.People = append(live.People, p)
		return true
	})

	var snap Snapshot
	if err := deepcopy.Copy(&snap, &live); err != nil {
		panic(err)
	}
	return snap
}

// writeLayout sends the static building description once, before turn 0.
func (g *Game) writeLayout() error {
	fmt.Fprintln(g.out, g.level.FloorsCount)
	fmt.Fprintln(g.out, len(g.order))
	for _, name := range g.order {
		spec := g.level.Elevators[name]
		fmt.Fprintln(g.out, name, spec.MinFloor, spec.MaxFloor, spec.Capacity)
	}
	return g.out.Flush()
}

func (g *Game) writeTurn() error {
	return writeTurn(g.out, g.Snapshot())
}

func writeTurn(w *bufio.Writer, s Snapshot) error {
	for _, e := range s.Elevators {
		fmt.Fprintln(w, e.Name, e.Height, int(e.Command), len(e.Occupants))
	}

	var calling, waiting, riding []*types.Person
	for _, p := range s.People {
		switch p.State {
		case types.Calling:
			calling = append(calling, p)
		case types.Waiting:
			waiting = append(waiting, p)
		case types.Riding:
			riding = append(riding, p)
		}
	}

	fmt.Fprintln(w, len(calling))
	for _, p := range calling {
		fmt.Fprintln(w, p.SrcFloor, p.DstFloor)
	}
	fmt.Fprintln(w, len(waiting))
	for _, p := range waiting {
		fmt.Fprintln(w, p.SrcFloor, p.DstFloor, p.Elevator, p.Patience)
	}
	// The elevator name is sent twice on riding lines; controllers rely on this layout.
	fmt.Fprintln(w, len(riding))
	for _, p := range riding {
		fmt.Fprintln(w, p.Elevator, p.DstFloor, p.Elevator, p.Patience)
	}
	return w.Flush()
}
