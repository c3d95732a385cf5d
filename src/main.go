package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"elevjudge/src/bot"
	"elevjudge/src/config"
	"elevjudge/src/game"
	"elevjudge/src/level"
	"elevjudge/src/logging"
	"elevjudge/src/protocol"
	"elevjudge/src/transport"
)

func main() {
	levelPath := flag.String("level", "", "Level file to play")
	configPath := flag.String("config", "", "Optional YAML file overriding the judge defaults")
	player := flag.String("player", "", "Controller command to run as a child process")
	listen := flag.String("listen", "", "UDP address to accept a QUIC controller on, e.g. :4242")
	useBot := flag.Bool("bot", false, "Play the level with the built-in reference controller")
	check := flag.Bool("check", false, "Validate the level and print it in normalized form, then exit")
	flag.Parse()

	if *levelPath == "" {
		fmt.Fprintln(os.Stderr, "usage: elevjudge -level <file> [-config <file>] [-check | -player <cmd> | -listen <addr> | -bot]")
		os.Exit(2)
	}
	if *check {
		if err := checkLevel(*levelPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := run(*levelPath, *configPath, *player, *listen, *useBot); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func checkLevel(path string) error {
	lvl, err := level.LoadFile(path)
	if err != nil {
		return err
	}
	return lvl.Save(os.Stdout)
}

func run(levelPath, configPath, player, listen string, useBot bool) error {
	// A controller that hangs up must surface as a write error, also on stdout.
	signal.Ignore(syscall.SIGPIPE)

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	logger, closeLog, err := logging.Init(cfg.DiagnosticsFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	lvl, err := level.LoadFile(levelPath)
	if err != nil {
		slog.Error("Could not load level", "err", err)
		return err
	}

	link, err := openLink(cfg, player, listen, useBot)
	if err != nil {
		slog.Error("Could not reach controller", "err", err)
		return err
	}
	defer link.Close()

	in := protocol.NewReader(link.In, cfg.ReadTimeout)
	defer in.Close()

	out := game.New(cfg, lvl.Clone(), link.Out, in, logger).Run()
	logger.Info("Level played", "level", lvl.Name, "people", lvl.People(), "state", out.State, "score", out.Score)
	fmt.Fprintf(os.Stderr, "%s after %d turns, score %d\n", out.State, out.Turn, out.Score)
	return nil
}

func openLink(cfg config.Judge, player, listen string, useBot bool) (*transport.Link, error) {
	chosen := 0
	for _, set := range []bool{player != "", listen != "", useBot} {
		if set {
			chosen++
		}
	}
	if chosen > 1 {
		return nil, fmt.Errorf("-player, -listen and -bot are exclusive")
	}

	switch {
	case player != "":
		return transport.Player(strings.Fields(player))
	case listen != "":
		q, err := transport.ListenQUIC(listen)
		if err != nil {
			return nil, err
		}
		return q.Accept(context.Background())
	case useBot:
		b, err := bot.New(cfg.FloorHeight, cfg.Acceleration)
		if err != nil {
			return nil, err
		}
		return transport.InProcess(b.Play), nil
	}
	return transport.Stdio(), nil
}
