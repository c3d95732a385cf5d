package transport

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// How long a player may keep running after its stdin is closed.
const playerExitGrace = 2 * time.Second

// Player starts the controller as a child process and links to its stdin and stdout.
func Player(argv []string) (*Link, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty player command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("player stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("player stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start player %s: %w", argv[0], err)
	}
	slog.Info("Player started", "cmd", argv, "pid", cmd.Process.Pid)

	l := &Link{Out: stdin, In: stdout}
	l.onClose(func() error { return stopPlayer(cmd) })
	l.onClose(stdin.Close)
	return l, nil
}

// stopPlayer waits for the player to exit on its own and kills it after the grace period.
func stopPlayer(cmd *exec.Cmd) error {
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case err := <-exited:
		slog.Debug("Player exited", "err", err)
		return nil
	case <-time.After(playerExitGrace):
		slog.Warn("Player still running, killing it", "pid", cmd.Process.Pid)
		if err := cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill player: %w", err)
		}
		<-exited
		return nil
	}
}
