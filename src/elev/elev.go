package elev

import (
	"slices"

	"elevjudge/src/types"
)

// Elevator is the physical state of one car. Positions are in sub-floor units, FloorHeight units per floor.
type Elevator struct {
	Name        string
	MinFloor    uint
	MaxFloor    uint
	Capacity    uint
	FloorHeight int
	Height      int
	Speed       int
	Command     types.MotorDirection
	Occupants   []types.PersonID // non-owning handles into the person arena
}

// New parks the car on its lowest floor, at rest.
func New(name string, spec types.ElevatorSpec, floorHeight int) *Elevator {
	return &Elevator{
		Name:        name,
		MinFloor:    spec.MinFloor,
		MaxFloor:    spec.MaxFloor,
		Capacity:    spec.Capacity,
		FloorHeight: floorHeight,
		Height:      int(spec.MinFloor) * floorHeight,
		Command:     types.MD_Stop,
	}
}

// Integrate advances the car one turn with constant acceleration.
func (e *Elevator) Integrate(acceleration int) {
	e.Speed += acceleration * int(e.Command)
	e.Height += e.Speed
}

// InBuilding reports whether the car is within [0, floors*FloorHeight].
func (e *Elevator) InBuilding(floors uint) bool {
	return e.Height >= 0 && e.Height <= int(floors)*e.FloorHeight
}

// Floor returns the floor the car is aligned with. ok is false between floors.
func (e *Elevator) Floor() (floor uint, ok bool) {
	if e.Height < 0 || e.Height%e.FloorHeight != 0 {
		return 0, false
	}
	return uint(e.Height / e.FloorHeight), true
}

// StoppedAt reports whether the car stands still at floor, not merely passing it.
func (e *Elevator) StoppedAt(floor uint) bool {
	f, ok := e.Floor()
	return ok && e.Speed == 0 && f == floor
}

func (e *Elevator) Full() bool {
	return uint(len(e.Occupants)) >= e.Capacity
}

func (e *Elevator) Board(id types.PersonID) {
	e.Occupants = append(e.Occupants, id)
}

// Alight removes and returns every occupant for which leaves returns true.
func (e *Elevator) Alight(leaves func(id types.PersonID) bool) []types.PersonID {
	var out []types.PersonID
	e.Occupants = slices.DeleteFunc(e.Occupants, func(id types.PersonID) bool {
		if leaves(id) {
			out = append(out, id)
			return true
		}
		return false
	})
	return out
}

// Drop clears a handle from the occupant list and reports whether it was there.
func (e *Elevator) Drop(id types.PersonID) bool {
	i := slices.Index(e.Occupants, id)
	if i < 0 {
		return false
	}
	e.Occupants = slices.Delete(e.Occupants, i, i+1)
	return true
}
