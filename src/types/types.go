package types

import "fmt"

// MotorDirection is the acceleration command of an elevator for one turn.
type MotorDirection int

const (
	MD_Up   MotorDirection = 1
	MD_Down MotorDirection = -1
	MD_Stop MotorDirection = 0
)

// ParseMotorDirection accepts only the three wire values -1, 0 and 1.
func ParseMotorDirection(v int) (MotorDirection, error) {
	switch MotorDirection(v) {
	case MD_Up, MD_Down, MD_Stop:
		return MotorDirection(v), nil
	}
	return MD_Stop, fmt.Errorf("command %d not in {-1, 0, 1}", v)
}

// ElevatorSpec is the static description of one car as found in a level.
type ElevatorSpec struct {
	MinFloor uint
	MaxFloor uint
	Capacity uint
}

// SpawnEvent makes PeopleCount persons appear at SrcFloor on its turn.
type SpawnEvent struct {
	PeopleCount uint
	SrcFloor    uint
	DstFloor    uint
	Patience    uint
}

// PersonID is a stable handle into the person arena.
type PersonID int
