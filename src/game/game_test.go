package game

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"elevjudge/src/config"
	"elevjudge/src/level"
	"elevjudge/src/protocol"
	"elevjudge/src/types"
)

func testConfig() config.Judge {
	c := config.Default()
	c.FloorHeight = 3
	c.Acceleration = 1
	c.FloorScoreWeight = 10
	c.PatienceScoreWeight = 1
	c.ReadTimeout = time.Second
	return c
}

func testLevel(floors uint, elevators map[string]types.ElevatorSpec, events map[uint][]types.SpawnEvent) *level.Level {
	l := &level.Level{Name: "test", FloorsCount: floors, Elevators: elevators}
	for turn, evs := range events {
		for _, ev := range evs {
			l.AddEvent(turn, ev)
		}
	}
	return l
}

func oneCar(capacity uint) map[string]types.ElevatorSpec {
	return map[string]types.ElevatorSpec{"E1": {MinFloor: 0, MaxFloor: 5, Capacity: capacity}}
}

func twoCars() map[string]types.ElevatorSpec {
	return map[string]types.ElevatorSpec{
		"E1": {MinFloor: 0, MaxFloor: 5, Capacity: 4},
		"E2": {MinFloor: 0, MaxFloor: 5, Capacity: 4},
	}
}

func newTestGame(cfg config.Judge, lvl *level.Level, in io.Reader) (*Game, *bytes.Buffer, *protocol.Reader) {
	var out bytes.Buffer
	rd := protocol.NewReader(in, cfg.ReadTimeout)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, lvl, &out, rd, logger), &out, rd
}

func TestFullTrip(t *testing.T) {
	cfg := testConfig()
	lvl := testLevel(5, oneCar(4), map[uint][]types.SpawnEvent{
		0: {{PeopleCount: 2, SrcFloor: 0, DstFloor: 3, Patience: 5}},
	})
	input := strings.Join([]string{
		"E1 E1 E1 0", // turn 0: both people assigned, both board at floor 0
		"E1 1", "E1 1", "E1 1",
		"E1 -1", "E1 -1", "E1 -1", // turn 6: stopped at height 9, floor 3
	}, "\n")
	g, out, rd := newTestGame(cfg, lvl, strings.NewReader(input))
	defer rd.Close()

	res := g.Run()

	if res.State != Exhausted {
		t.Fatalf("Expected Exhausted, got %s (%v)", res.State, res.Cause)
	}
	wantScore := uint64(2 * (3*cfg.FloorScoreWeight + 5*cfg.PatienceScoreWeight))
	if res.Score != wantScore {
		t.Errorf("Expected score %d, got %d", wantScore, res.Score)
	}
	if res.Turn != 7 {
		t.Errorf("Expected 7 turns, got %d", res.Turn)
	}

	wantPrefix := "5\n1\nE1 0 5 4\n" +
		"E1 0 0 0\n2\n0 3\n0 3\n0\n0\n" +
		"E1 0 0 2\n0\n0\n2\nE1 3 E1 5\nE1 3 E1 5\n"
	if !strings.HasPrefix(out.String(), wantPrefix) {
		t.Errorf("Expected output to start with\n%s\ngot\n%s", wantPrefix, out.String())
	}
	if lvl.Pending() {
		t.Error("Expected timeline to be consumed")
	}
}

func TestTimeoutEndsSessionWithZeroScore(t *testing.T) {
	cfg := testConfig()
	cfg.ReadTimeout = 30 * time.Millisecond
	lvl := testLevel(5, twoCars(), map[uint][]types.SpawnEvent{
		0: {{PeopleCount: 1, SrcFloor: 0, DstFloor: 0, Patience: 5}},
		9: {{PeopleCount: 1, SrcFloor: 1, DstFloor: 2, Patience: 5}},
	})
	pr, pw := io.Pipe()
	defer pw.Close()
	go func() {
		// the person arrives on turn 1, then E2 never gets its turn 2 command
		io.WriteString(pw, "E1 E1 0 E2 0\nE1 0 E2 0\nE1 0\n")
	}()
	g, _, rd := newTestGame(cfg, lvl, pr)
	defer rd.Close()

	res := g.Run()

	if res.State != Disqualified {
		t.Fatalf("Expected Disqualified, got %s", res.State)
	}
	if !errors.Is(res.Cause, protocol.ErrReadTimeout) {
		t.Errorf("Expected read timeout, got %v", res.Cause)
	}
	if res.Score != 0 || res.Turn != 2 {
		t.Errorf("Expected score 0 on turn 2, got %d on turn %d", res.Score, res.Turn)
	}
}

func TestUnservedPersonGivesUp(t *testing.T) {
	lvl := testLevel(5, oneCar(4), map[uint][]types.SpawnEvent{
		0: {{PeopleCount: 1, SrcFloor: 2, DstFloor: 4, Patience: 1}},
	})
	g, out, rd := newTestGame(testConfig(), lvl, strings.NewReader("ghost E1 0\nE1 0\n"))
	defer rd.Close()

	res := g.Run()

	if res.State != Exhausted || res.Score != 0 || res.Turn != 2 {
		t.Errorf("Expected Exhausted with score 0 after 2 turns, got %s score %d turn %d", res.State, res.Score, res.Turn)
	}
	if !strings.Contains(out.String(), "2 4 ghost 0\n") {
		t.Errorf("Expected waiting line with patience 0 on turn 1, got\n%s", out.String())
	}
}

func TestProtocolViolations(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  error
	}{
		{"duplicate elevator", "E1 0 E1 1", ErrDuplicateCommand},
		{"unknown elevator", "E1 0 E9 0", ErrUnknownElevator},
		{"command out of range", "E1 0 E2 2", ErrInvalidCommand},
		{"malformed command", "E1 up E2 0", protocol.ErrMalformed},
		{"input closed", "E1 0", protocol.ErrInputClosed},
	}
	for _, tc := range testCases {
		lvl := testLevel(5, twoCars(), map[uint][]types.SpawnEvent{
			3: {{PeopleCount: 1, SrcFloor: 0, DstFloor: 1, Patience: 5}},
		})
		g, _, rd := newTestGame(testConfig(), lvl, strings.NewReader(tc.input))
		res := g.Run()
		rd.Close()

		if res.State != Disqualified {
			t.Errorf("%s: expected Disqualified, got %s", tc.name, res.State)
		}
		if !errors.Is(res.Cause, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, res.Cause)
		}
		if res.Score != 0 || res.Turn != 0 {
			t.Errorf("%s: expected score 0 on turn 0, got %d on turn %d", tc.name, res.Score, res.Turn)
		}
	}
}

func TestAssignmentReadFailure(t *testing.T) {
	stalled, stalledW := io.Pipe()
	defer stalledW.Close()

	testCases := []struct {
		name  string
		input io.Reader
		want  error
	}{
		{"input closed", strings.NewReader(""), protocol.ErrInputClosed},
		{"controller stalls", stalled, protocol.ErrReadTimeout},
	}
	for _, tc := range testCases {
		cfg := testConfig()
		cfg.ReadTimeout = 30 * time.Millisecond
		lvl := testLevel(5, twoCars(), map[uint][]types.SpawnEvent{
			0: {{PeopleCount: 1, SrcFloor: 0, DstFloor: 1, Patience: 5}},
		})
		g, _, rd := newTestGame(cfg, lvl, tc.input)
		res := g.Run()
		rd.Close()

		if res.State != Disqualified {
			t.Errorf("%s: expected Disqualified, got %s", tc.name, res.State)
		}
		if !errors.Is(res.Cause, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, res.Cause)
		}
		if res.Score != 0 || res.Turn != 0 {
			t.Errorf("%s: expected score 0 on turn 0, got %d on turn %d", tc.name, res.Score, res.Turn)
		}
		if p := g.people.get(0); p == nil || p.State != types.Calling {
			t.Errorf("%s: expected person 0 still calling, got %+v", tc.name, p)
		}
	}
}

func TestCrash(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		turn  uint
	}{
		{"through the floor", "E1 -1", 0},
		{"through the roof", "E1 1 E1 1 E1 1 E1 1", 3}, // heights 1, 3, 6, 10 in a 6 unit shaft
	}
	for _, tc := range testCases {
		lvl := testLevel(2, map[string]types.ElevatorSpec{"E1": {MaxFloor: 2, Capacity: 1}}, map[uint][]types.SpawnEvent{
			20: {{PeopleCount: 1, SrcFloor: 0, DstFloor: 1, Patience: 5}},
		})
		g, _, rd := newTestGame(testConfig(), lvl, strings.NewReader(tc.input))
		res := g.Run()
		rd.Close()

		if res.State != Crashed || !errors.Is(res.Cause, ErrCrash) {
			t.Errorf("%s: expected crash, got %s (%v)", tc.name, res.State, res.Cause)
		}
		if res.Score != 0 || res.Turn != tc.turn {
			t.Errorf("%s: expected score 0 on turn %d, got %d on turn %d", tc.name, tc.turn, res.Score, res.Turn)
		}
	}
}

func TestCrashLosesScoreAndOccupants(t *testing.T) {
	lvl := testLevel(5, oneCar(4), map[uint][]types.SpawnEvent{
		0: {
			{PeopleCount: 1, SrcFloor: 0, DstFloor: 0, Patience: 4},
			{PeopleCount: 1, SrcFloor: 0, DstFloor: 2, Patience: 4},
		},
	})
	// turn 1 scores the first person, turn 2 drives the second one into the pit
	g, _, rd := newTestGame(testConfig(), lvl, strings.NewReader("E1 E1 E1 0\nE1 0\nE1 -1\n"))
	defer rd.Close()

	res := g.Run()

	if res.State != Crashed || res.Score != 0 || res.Turn != 2 {
		t.Errorf("Expected crash with score 0 on turn 2, got %s score %d turn %d", res.State, res.Score, res.Turn)
	}
}

func TestBroadcastIsIdempotent(t *testing.T) {
	lvl := testLevel(5, twoCars(), map[uint][]types.SpawnEvent{
		0: {{PeopleCount: 3, SrcFloor: 1, DstFloor: 4, Patience: 6}},
	})
	g, _, rd := newTestGame(testConfig(), lvl, strings.NewReader(""))
	defer rd.Close()
	g.spawnEventsForTurn(0)
	g.people.get(0).Assign("E2")

	before := g.Snapshot()
	var first, second bytes.Buffer
	if err := writeTurn(bufio.NewWriter(&first), g.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if err := writeTurn(bufio.NewWriter(&second), g.Snapshot()); err != nil {
		t.Fatal(err)
	}

	if first.String() != second.String() {
		t.Errorf("Expected identical broadcasts, got\n%s\nand\n%s", first.String(), second.String())
	}
	if !reflect.DeepEqual(before, g.Snapshot()) {
		t.Error("Expected broadcasting to leave the session untouched")
	}
	want := "E1 0 0 0\nE2 0 0 0\n2\n1 4\n1 4\n1\n1 4 E2 6\n0\n"
	if first.String() != want {
		t.Errorf("Expected\n%s\ngot\n%s", want, first.String())
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	lvl := testLevel(5, oneCar(4), map[uint][]types.SpawnEvent{
		0: {{PeopleCount: 1, SrcFloor: 1, DstFloor: 4, Patience: 6}},
	})
	g, _, rd := newTestGame(testConfig(), lvl, strings.NewReader(""))
	defer rd.Close()
	g.spawnEventsForTurn(0)

	snap := g.Snapshot()
	snap.People[0].Patience = 0
	snap.Elevators[0].Height = 42

	if g.people.get(0).Patience != 6 || g.elevators["E1"].Height != 0 {
		t.Error("Expected changes to a snapshot not to reach the session")
	}
}

func TestFullElevatorRefusesBoarding(t *testing.T) {
	lvl := testLevel(5, oneCar(1), map[uint][]types.SpawnEvent{
		0: {{PeopleCount: 2, SrcFloor: 0, DstFloor: 2, Patience: 5}},
	})
	g, _, rd := newTestGame(testConfig(), lvl, strings.NewReader("E1 E1 E1 0"))
	defer rd.Close()

	g.step()

	snap := g.Snapshot()
	if snap.People[0].State != types.Riding {
		t.Errorf("Expected first person Riding, got %s", snap.People[0].State)
	}
	if snap.People[1].State != types.Waiting || snap.People[1].Patience != 4 {
		t.Errorf("Expected second person Waiting with patience 4, got %s with %d", snap.People[1].State, snap.People[1].Patience)
	}
	if len(snap.Elevators[0].Occupants) != 1 {
		t.Errorf("Expected 1 occupant, got %d", len(snap.Elevators[0].Occupants))
	}
}

func TestNoBoardingWhilePassing(t *testing.T) {
	lvl := testLevel(5, oneCar(4), map[uint][]types.SpawnEvent{
		0: {{PeopleCount: 1, SrcFloor: 1, DstFloor: 0, Patience: 9}},
	})
	// E1 passes floor 1 (height 3) with speed 2 on turn 1
	g, _, rd := newTestGame(testConfig(), lvl, strings.NewReader("E1 E1 1\nE1 1\n"))
	defer rd.Close()

	g.step()
	g.step()

	p := g.people.get(0)
	if g.elevators["E1"].Height != 3 || p.State != types.Waiting || p.Patience != 7 {
		t.Errorf("Expected person still waiting with patience 7 at height 3, got %s with %d at height %d", p.State, p.Patience, g.elevators["E1"].Height)
	}
}

func TestUnansweredCall(t *testing.T) {
	lvl := testLevel(5, oneCar(4), nil)
	g, _, rd := newTestGame(testConfig(), lvl, strings.NewReader(""))
	defer rd.Close()
	g.people.add(types.NewPerson(types.SpawnEvent{PeopleCount: 1, SrcFloor: 1, DstFloor: 2, Patience: 3}))

	g.resolve()

	if res := g.Outcome(); res.State != Unanswered || !errors.Is(res.Cause, ErrUnanswered) || res.Score != 0 {
		t.Errorf("Expected Unanswered with score 0, got %s score %d", res.State, res.Score)
	}
}

func TestDropPurgesOccupants(t *testing.T) {
	lvl := testLevel(5, oneCar(4), nil)
	g, _, rd := newTestGame(testConfig(), lvl, strings.NewReader(""))
	defer rd.Close()
	id := g.people.add(types.NewPerson(types.SpawnEvent{PeopleCount: 1, DstFloor: 2, Patience: 3}))
	g.elevators["E1"].Board(id)

	g.drop(id)

	if len(g.elevators["E1"].Occupants) != 0 || g.people.len() != 0 || g.people.get(id) != nil {
		t.Error("Expected person gone from both the arena and the car")
	}
}

func TestEmptyLevelEndsImmediately(t *testing.T) {
	lvl := testLevel(5, oneCar(4), nil)
	g, out, rd := newTestGame(testConfig(), lvl, strings.NewReader(""))
	defer rd.Close()

	res := g.Run()

	if res.State != Exhausted || res.Turn != 0 {
		t.Errorf("Expected Exhausted on turn 0, got %s on turn %d", res.State, res.Turn)
	}
	if out.String() != "5\n1\nE1 0 5 4\n" {
		t.Errorf("Expected only the layout, got\n%s", out.String())
	}
}
