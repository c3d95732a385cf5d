// Package game runs one judging session: spawn, broadcast, command intake and resolution, turn after turn.
package game

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"elevjudge/src/config"
	"elevjudge/src/elev"
	"elevjudge/src/level"
	"elevjudge/src/types"
	"elevjudge/src/utils"
)

type State int

const (
	Running State = iota
	Crashed
	Unanswered
	Disqualified
	Exhausted
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Crashed:
		return "Crashed"
	case Unanswered:
		return "Unanswered"
	case Disqualified:
		return "Disqualified"
	case Exhausted:
		return "Exhausted"
	}
	return "Unknown"
}

// Outcome is the result of a finished session. Score is 0 unless State is Exhausted.
type Outcome struct {
	State State
	Score uint64
	Turn  uint
	Cause error
}

type Game struct {
	cfg       config.Judge
	level     *level.Level
	elevators map[string]*elev.Elevator
	order     []string // elevator names, ascending
	people    roster
	turn      uint
	score     uint64
	state     State
	cause     error
	out       *bufio.Writer
	in        CommandSource
	log       *slog.Logger
}

// New prepares a session on lvl. The game consumes the level's timeline; pass a Clone to keep the original.
func New(cfg config.Judge, lvl *level.Level, out io.Writer, in CommandSource, logger *slog.Logger) *Game {
	g := &Game{
		cfg:       cfg,
		level:     lvl,
		elevators: make(map[string]*elev.Elevator, len(lvl.Elevators)),
		order:     utils.SortedKeys(lvl.Elevators),
		out:       bufio.NewWriter(out),
		in:        in,
		log:       logger,
	}
	for _, name := range g.order {
		g.elevators[name] = elev.New(name, lvl.Elevators[name], cfg.FloorHeight)
	}
	return g
}

// Run plays the session to its end.
func (g *Game) Run() Outcome {
	g.log.Info("Session started", "level", g.level.Name, "floors", g.level.FloorsCount, "elevators", len(g.order))
	if err := g.writeLayout(); err != nil {
		g.fail(Disqualified, fmt.Errorf("layout: %w", err))
	}
	for g.state == Running && (g.level.Pending() || g.people.len() > 0) {
		g.step()
	}
	if g.state == Running {
		g.state = Exhausted
	}
	out := g.Outcome()
	g.log.Info("Session ended", "state", out.State, "score", out.Score, "turn", out.Turn, "cause", out.Cause)
	return out
}

func (g *Game) step() {
	g.spawnEventsForTurn(g.turn)
	if err := g.writeTurn(); err != nil {
		g.fail(Disqualified, fmt.Errorf("turn %d broadcast: %w", g.turn, err))
		return
	}
	if err := g.readCommands(); err != nil {
		g.fail(Disqualified, fmt.Errorf("turn %d: %w", g.turn, err))
		return
	}
	g.resolve()
	if g.state == Running {
		g.turn++
	}
}

// fail ends the session. Nothing mutated earlier in the turn is rolled back.
func (g *Game) fail(state State, err error) {
	if g.state != Running {
		return
	}
	g.state = state
	g.cause = err
	g.score = 0
	g.log.Error("Fatal condition", "state", state, "turn", g.turn, "err", err)
}

func (g *Game) Outcome() Outcome {
	return Outcome{State: g.state, Score: g.score, Turn: g.turn, Cause: g.cause}
}

// drop removes a person from the arena after purging its handle from every car.
func (g *Game) drop(id types.PersonID) {
	for _, name := range g.order {
		if g.elevators[name].Drop(id) {
			g.log.Warn("Dropped person still listed as occupant", "person", id, "elevator", name)
		}
	}
	g.people.remove(id)
}
