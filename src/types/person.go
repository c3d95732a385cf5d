package types

import "fmt"

type PersonState int

const (
	Calling PersonState = iota
	Waiting
	Riding
	Arrived
	GivenUp
)

func (s PersonState) String() string {
	switch s {
	case Calling:
		return "Calling"
	case Waiting:
		return "Waiting"
	case Riding:
		return "Riding"
	case Arrived:
		return "Arrived"
	case GivenUp:
		return "GivenUp"
	}
	return "Unknown"
}

// allowed lists, per state, the states a person may move on to. Nothing ever moves backward.
var allowed = map[PersonState][]PersonState{
	Calling: {Waiting, GivenUp},
	Waiting: {Riding, GivenUp},
	Riding:  {Arrived},
}

type Person struct {
	ID       PersonID
	SrcFloor uint
	DstFloor uint
	Patience int
	State    PersonState
	Elevator string // assigned car, set when leaving Calling
}

func NewPerson(ev SpawnEvent) *Person {
	return &Person{
		SrcFloor: ev.SrcFloor,
		DstFloor: ev.DstFloor,
		Patience: int(ev.Patience),
		State:    Calling,
	}
}

// Assign moves a calling person to Waiting for the named elevator.
func (p *Person) Assign(elevator string) error {
	if err := p.advance(Waiting); err != nil {
		return err
	}
	p.Elevator = elevator
	return nil
}

func (p *Person) Board() error  { return p.advance(Riding) }
func (p *Person) Arrive() error { return p.advance(Arrived) }
func (p *Person) GiveUp() error { return p.advance(GivenUp) }

func (p *Person) advance(to PersonState) error {
	for _, next := range allowed[p.State] {
		if next == to {
			p.State = to
			return nil
		}
	}
	return fmt.Errorf("person %d: illegal transition %s -> %s", p.ID, p.State, to)
}
