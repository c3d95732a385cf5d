package game

import (
	"fmt"

	"elevjudge/src/types"
)

// CommandSource delivers controller tokens, each read bounded by its own timeout.
type CommandSource interface {
	ReadToken(what string) (string, error)
	ReadInt(what string) (int, error)
}

// readCommands takes one elevator name per calling person, then exactly one command per elevator.
func (g *Game) readCommands() error {
	if err := g.readAssignments(); err != nil {
		return err
	}

	commanded := make(map[string]bool, len(g.order))
	for range g.order {
		name, err := g.in.ReadToken("elevator name")
		if err != nil {
			return err
		}
		e, known := g.elevators[name]
		if !known {
			return fmt.Errorf("%w: %q", ErrUnknownElevator, name)
		}
		if commanded[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
		}
		v, err := g.in.ReadInt("command for " + name)
		if err != nil {
			return err
		}
		cmd, err := types.ParseMotorDirection(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCommand, name, err)
		}
		commanded[name] = true
		e.Command = cmd
	}

	for _, name := range g.order {
		if !commanded[name] {
			return fmt.Errorf("%w: %s", ErrMissingCommand, name)
		}
	}
	return nil
}

func (g *Game) readAssignments() error {
	var err error
	g.people.each(func(p *types.Person) bool {
		if p.State != types.Calling {
			return true
		}
		var name string
		name, err = g.in.ReadToken(fmt.Sprintf("elevator for person %d", p.ID))
		if err != nil {
			return false
		}
		if _, known := g.elevators[name]; !known {
			g.log.Warn("Person assigned to unknown elevator", "person", p.ID, "elevator", name)
		}
		if err = p.Assign(name); err != nil {
			return false
		}
		g.log.Debug("Person assigned", "person", p.ID, "elevator", name, "src", p.SrcFloor, "dst", p.DstFloor)
		return true
	})
	return err
}
