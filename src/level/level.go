package level

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"elevjudge/src/types"
	"elevjudge/src/utils"

	"github.com/tiendc/go-deepcopy"
)

// Level is a building plus the schedule of people arriving in it.
type Level struct {
	Name        string
	Description string
	FloorsCount uint
	Elevators   map[string]types.ElevatorSpec
	Timeline    map[uint][]types.SpawnEvent
}

// AddEvent appends ev to the bucket of its turn.
func (l *Level) AddEvent(turn uint, ev types.SpawnEvent) {
	if l.Timeline == nil {
		l.Timeline = make(map[uint][]types.SpawnEvent)
	}
	l.Timeline[turn] = append(l.Timeline[turn], ev)
}

// Take removes and returns the events of turn. A turn is only ever returned once.
func (l *Level) Take(turn uint) ([]types.SpawnEvent, bool) {
	events, ok := l.Timeline[turn]
	if ok {
		delete(l.Timeline, turn)
	}
	return events, ok
}

// Pending reports whether any spawn event is still to come.
func (l *Level) Pending() bool {
	return len(l.Timeline) > 0
}

// People is the number of persons the remaining timeline will spawn.
func (l *Level) People() uint {
	var n uint
	for _, events := range l.Timeline {
		for _, ev := range events {
			n += ev.PeopleCount
		}
	}
	return n
}

func (l *Level) ElevatorNames() []string {
	return utils.SortedKeys(l.Elevators)
}

// Clone returns a deep copy, so a loaded level can be played more than once.
func (l *Level) Clone() *Level {
	clone := new(Level)
	if err := deepcopy.Copy(clone, l); err != nil {
		panic(err)
	}
	return clone
}

func (l *Level) Validate() error {
	if len(l.Elevators) == 0 {
		return fmt.Errorf("level %q has no elevators", l.Name)
	}
	for name, spec := range l.Elevators {
		if spec.MinFloor > spec.MaxFloor || spec.MaxFloor > l.FloorsCount {
			return fmt.Errorf("elevator %s: floors %d..%d outside building of %d floors", name, spec.MinFloor, spec.MaxFloor, l.FloorsCount)
		}
	}
	for turn, events := range l.Timeline {
		for _, ev := range events {
			if ev.SrcFloor > l.FloorsCount || ev.DstFloor > l.FloorsCount {
				return fmt.Errorf("event at turn %d: floors %d -> %d outside building of %d floors", turn, ev.SrcFloor, ev.DstFloor, l.FloorsCount)
			}
		}
	}
	return nil
}

func LoadFile(path string) (*Level, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level: %w", err)
	}
	defer file.Close()

	l, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	return l, nil
}

// Load parses the line oriented level format: name line, description line, floor count,
// elevator list and event list, each list prefixed by its length.
func Load(r io.Reader) (*Level, error) {
	p := &parser{sc: bufio.NewScanner(r)}
	l := &Level{
		Elevators: make(map[string]types.ElevatorSpec),
		Timeline:  make(map[uint][]types.SpawnEvent),
	}
	l.Name = p.text("name")
	l.Description = p.text("description")
	l.FloorsCount = p.number("floors count")

	elevators := p.number("elevator count")
	for i := uint(0); i < elevators && p.err == nil; i++ {
		fields := p.fields(fmt.Sprintf("elevator %d", i), 4)
		name := fields[0]
		spec := types.ElevatorSpec{
			MinFloor: p.parseUint(fields[1], "min floor"),
			MaxFloor: p.parseUint(fields[2], "max floor"),
			Capacity: p.parseUint(fields[3], "capacity"),
		}
		if _, dup := l.Elevators[name]; dup && p.err == nil {
			p.err = fmt.Errorf("duplicate elevator %s", name)
		}
		l.Elevators[name] = spec
	}

	events := p.number("event count")
	for i := uint(0); i < events && p.err == nil; i++ {
		fields := p.fields(fmt.Sprintf("event %d", i), 5)
		turn := p.parseUint(fields[0], "turn")
		l.AddEvent(turn, types.SpawnEvent{
			PeopleCount: p.parseUint(fields[1], "people count"),
			SrcFloor:    p.parseUint(fields[2], "source floor"),
			DstFloor:    p.parseUint(fields[3], "destination floor"),
			Patience:    p.parseUint(fields[4], "patience"),
		})
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Save writes l in the format Load reads, with events flattened in turn order.
func (l *Level) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, l.Name)
	fmt.Fprintln(bw, l.Description)
	fmt.Fprintln(bw, l.FloorsCount)
	fmt.Fprintln(bw, len(l.Elevators))
	for _, name := range l.ElevatorNames() {
		spec := l.Elevators[name]
		fmt.Fprintln(bw, name, spec.MinFloor, spec.MaxFloor, spec.Capacity)
	}

	turns := utils.SortedKeys(l.Timeline)
	count := 0
	for _, turn := range turns {
		count += len(l.Timeline[turn])
	}
	fmt.Fprintln(bw, count)
	for _, turn := range turns {
		for _, ev := range l.Timeline[turn] {
			fmt.Fprintln(bw, turn, ev.PeopleCount, ev.SrcFloor, ev.DstFloor, ev.Patience)
		}
	}
	return bw.Flush()
}

// parser keeps the first error and turns every later call into a no-op.
type parser struct {
	sc     *bufio.Scanner
	lineNo int
	err    error
}

func (p *parser) next(what string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	if !p.sc.Scan() {
		p.err = p.sc.Err()
		if p.err == nil {
			p.err = fmt.Errorf("line %d: unexpected end of file, want %s", p.lineNo+1, what)
		}
		return "", false
	}
	p.lineNo++
	return strings.TrimRight(p.sc.Text(), "\r"), true
}

// record is the next non-blank line. Only the name and description lines may be empty.
func (p *parser) record(what string) (string, bool) {
	for {
		s, ok := p.next(what)
		if !ok || strings.TrimSpace(s) != "" {
			return s, ok
		}
	}
}

func (p *parser) text(what string) string {
	s, _ := p.next(what)
	return s
}

func (p *parser) fields(what string, n int) []string {
	out := make([]string, n)
	s, ok := p.record(what)
	if !ok {
		return out
	}
	f := strings.Fields(s)
	if len(f) != n {
		p.err = fmt.Errorf("line %d: %s: want %d fields, got %d", p.lineNo, what, n, len(f))
		return out
	}
	return f
}

func (p *parser) number(what string) uint {
	s, ok := p.record(what)
	if !ok {
		return 0
	}
	return p.parseUint(strings.TrimSpace(s), what)
}

func (p *parser) parseUint(s, what string) uint {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		p.err = fmt.Errorf("line %d: %s: %w", p.lineNo, what, err)
		return 0
	}
	return uint(v)
}
