package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/logger"
	"ctchen222/tictactoe/internal/render"
	"ctchen222/tictactoe/internal/session"
)

const help = `commands:
  <row> <col>          place your mark, e.g. "1 1"
  reset                start a new game
  easy|medium|impossible   change difficulty (resets the board)
  mode                 toggle between two players and playing the computer
  scores reset         clear the tally
  help                 show this text
  quit                 leave`

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	mode := flag.String("mode", "", "bot or human; overrides the config")
	difficulty := flag.String("difficulty", "", "easy, medium or impossible; overrides the config")
	nameX := flag.String("x", "", "display name for X")
	nameO := flag.String("o", "", "display name for O")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	slog.SetDefault(logger.New(os.Stderr, level, false))

	vsComputer := cfg.Game.VsComputer
	switch *mode {
	case "bot":
		vsComputer = true
	case "human":
		vsComputer = false
	}
	diffName := cfg.Game.Difficulty
	if *difficulty != "" {
		diffName = *difficulty
	}
	diff, err := bot.ParseDifficulty(diffName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	r := render.New(os.Stdout)
	s := session.New(vsComputer, diff, session.WithNames(*nameX, *nameO))
	if err := run(context.Background(), s, r, bufio.NewScanner(os.Stdin)); err != nil {
		slog.Error("game loop failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s *session.Session, r *render.Renderer, in *bufio.Scanner) error {
	r.Line("tic-tac-toe: %s", help)
	r.Frame(s.State(), s.Name)

	for {
		fmt.Print("> ")
		if !in.Scan() {
			return in.Err()
		}
		fields := strings.Fields(strings.ToLower(in.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			r.Line("%s", help)
			continue
		case "reset":
			if len(fields) == 1 {
				s.Reset(ctx)
			}
		case "scores":
			if len(fields) == 2 && fields[1] == "reset" {
				s.ResetScores(ctx)
			}
		case "mode":
			s.SetMode(ctx, !s.State().VsComputer)
		case "easy", "medium", "impossible":
			s.SetDifficulty(ctx, bot.Difficulty(fields[0]))
		default:
			if err := move(ctx, s, fields); err != nil {
				r.Line("%v", err)
				continue
			}
		}
		r.Frame(s.State(), s.Name)
	}
}

func move(ctx context.Context, s *session.Session, fields []string) error {
	if len(fields) != 2 {
		return errors.New(`unknown command, type "help"`)
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("bad row %q", fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("bad column %q", fields[1])
	}

	_, err = s.SubmitMove(ctx, row, col)
	switch {
	case errors.Is(err, game.ErrInvalidMove):
		return fmt.Errorf("can't play %d %d: %w", row, col, err)
	case errors.Is(err, session.ErrGameOver):
		return errors.New(`game over, type "reset" to play again`)
	}
	return err
}
