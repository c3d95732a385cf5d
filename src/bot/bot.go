// Package bot is a simple reference controller. It answers every call with the cheapest car and
// moves cars one speed step at a time, so they always stop exactly on a floor.
package bot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"elevjudge/src/types"
	"elevjudge/src/utils"
)

// car is the bot's view of one elevator. Speed is not broadcast, so the bot tracks it from its own commands.
type car struct {
	name      string
	minFloor  uint
	maxFloor  uint
	capacity  uint
	height    int
	occupants uint
	speed     int
	target    int    // height units, -1 when idle
	pickups   []uint // source floors of people waiting for this car
	drops     []uint // destination floors of people riding it
	fresh     []uint // pickups assigned this turn
}

type call struct {
	src, dst uint
}

type Bot struct {
	floorHeight  int
	acceleration int
	floors       uint
	cars         []*car
	byName       map[string]*car
	in           *tokens
	w            *bufio.Writer
}

func New(floorHeight, acceleration int) (*Bot, error) {
	if acceleration <= 0 || floorHeight%acceleration != 0 {
		return nil, fmt.Errorf("bot needs the floor height (%d) to be a multiple of the acceleration (%d)", floorHeight, acceleration)
	}
	return &Bot{floorHeight: floorHeight, acceleration: acceleration, byName: make(map[string]*car)}, nil
}

// Play reads the judge's state from r and answers on w until the judge stops talking.
func (b *Bot) Play(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	b.in = &tokens{sc: sc}
	b.w = bufio.NewWriter(w)

	if err := b.readLayout(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	for turn := 0; ; turn++ {
		calls, err := b.readTurn()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("turn %d: %w", turn, err)
		}
		b.answer(calls)
		if err := b.w.Flush(); err != nil {
			return err
		}
	}
}

func (b *Bot) readLayout() error {
	b.floors = b.in.count()
	count := b.in.count()
	for i := uint(0); i < count && b.in.err == nil; i++ {
		c := &car{
			name:     b.in.word(),
			minFloor: b.in.count(),
			maxFloor: b.in.count(),
			capacity: b.in.count(),
			target:   -1,
		}
		c.height = int(c.minFloor) * b.floorHeight
		b.cars = append(b.cars, c)
		b.byName[c.name] = c
	}
	return b.in.err
}

// readTurn refreshes the cars from one broadcast and returns the calls to answer.
func (b *Bot) readTurn() ([]call, error) {
	for range b.cars {
		name := b.in.word()
		height, _, occupants := b.in.num(), b.in.num(), b.in.count()
		if b.in.err != nil {
			return nil, b.in.err
		}
		c, ok := b.byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown elevator %q in broadcast", name)
		}
		c.height, c.occupants = height, occupants
		c.pickups, c.drops, c.fresh = c.pickups[:0], c.drops[:0], c.fresh[:0]
	}

	calls := make([]call, b.in.count())
	for i := range calls {
		calls[i] = call{src: b.in.count(), dst: b.in.count()}
	}

	// waiting: src dst elevator patience
	for n := b.in.count(); n > 0 && b.in.err == nil; n-- {
		src, _, name, _ := b.in.count(), b.in.count(), b.in.word(), b.in.num()
		if c, ok := b.byName[name]; ok {
			c.pickups = append(c.pickups, src)
		}
	}

	// riding: elevator dst elevator patience
	for n := b.in.count(); n > 0 && b.in.err == nil; n-- {
		name, dst, _, _ := b.in.word(), b.in.count(), b.in.word(), b.in.num()
		if c, ok := b.byName[name]; ok {
			c.drops = append(c.drops, dst)
		}
	}
	return calls, b.in.err
}

func (b *Bot) answer(calls []call) {
	for _, cl := range calls {
		c := b.cheapest(cl)
		c.pickups = append(c.pickups, cl.src)
		c.fresh = append(c.fresh, cl.src)
		fmt.Fprintln(b.w, c.name)
		slog.Debug("Bot assigned call", "src", cl.src, "dst", cl.dst, "elevator", c.name)
	}
	for _, c := range b.cars {
		cmd := b.drive(c)
		c.speed += b.acceleration * int(cmd)
		fmt.Fprintln(b.w, c.name, int(cmd))
	}
}

// cheapest picks the car with the lowest cost, avoiding cars that cannot reach both floors of the call.
func (b *Bot) cheapest(cl call) *car {
	var best *car
	bestCost := 0
	for _, c := range b.cars {
		cost := b.cost(c, cl)
		if cl.src < c.minFloor || cl.src > c.maxFloor || cl.dst < c.minFloor || cl.dst > c.maxFloor {
			cost += 1000
		}
		if best == nil || cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best
}

// cost weighs distance to the caller, work already queued, and a car with no seat left.
func (b *Bot) cost(c *car, cl call) int {
	floor := uint(max(c.height, 0) / b.floorHeight)
	cost := int(utils.AbsDiff(floor, cl.src)) * 2
	cost += (len(c.pickups) + len(c.drops)) * 4
	if c.occupants+uint(len(c.pickups)) >= c.capacity {
		cost += 50
	}
	return cost
}

// drive moves the car at one speed step towards its target and brakes on it.
func (b *Bot) drive(c *car) types.MotorDirection {
	if c.speed != 0 {
		if c.height != c.target {
			return types.MD_Stop
		}
		if c.speed > 0 {
			return types.MD_Down
		}
		return types.MD_Up
	}

	c.target = b.nextTarget(c)
	switch {
	case c.target < 0 || c.target == c.height:
		return types.MD_Stop
	case c.target > c.height:
		return types.MD_Up
	default:
		return types.MD_Down
	}
}

// nextTarget is the nearest useful stop in height units, or -1 when there is nothing to do.
// A stopped car has already served its own floor, except for people who called this very turn.
func (b *Bot) nextTarget(c *car) int {
	full := c.occupants >= c.capacity
	here := c.height
	for _, src := range c.fresh {
		if !full && int(src)*b.floorHeight == here {
			return here
		}
	}

	stops := c.drops
	if !full {
		stops = append(stops[:len(stops):len(stops)], c.pickups...)
	}
	target, best := -1, -1
	for _, stop := range stops {
		if stop < c.minFloor || stop > c.maxFloor || stop > b.floors {
			continue
		}
		h := int(stop) * b.floorHeight
		d := h - here
		if d < 0 {
			d = -d
		}
		if d == 0 {
			continue
		}
		if best < 0 || d < best {
			target, best = h, d
		}
	}
	return target
}

// tokens keeps the first read error and returns zero values after it.
type tokens struct {
	sc  *bufio.Scanner
	err error
}

func (t *tokens) word() string {
	if t.err != nil {
		return ""
	}
	if !t.sc.Scan() {
		t.err = t.sc.Err()
		if t.err == nil {
			t.err = io.EOF
		}
		return ""
	}
	return t.sc.Text()
}

func (t *tokens) num() int {
	s := t.word()
	if t.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		t.err = fmt.Errorf("number: %w", err)
	}
	return v
}

func (t *tokens) count() uint {
	v := t.num()
	if v < 0 && t.err == nil {
		t.err = fmt.Errorf("negative count %d", v)
	}
	if v < 0 {
		return 0
	}
	return uint(v)
}
