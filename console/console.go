// Package console implements an interactive game of Nim against the AI over a
// terminal.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/twipi/twinim/game"
)

// ErrQuit is returned when the player leaves the game before it ends.
var ErrQuit = errors.New("quit")

// LineReader reads lines of input after showing a prompt.
// [readline.Instance] implements it.
type LineReader interface {
	SetPrompt(string)
	Readline() (string, error)
}

var _ LineReader = (*readline.Instance)(nil)

// Config configures a Console.
type Config struct {
	// MaxObjects is the largest number of objects allowed on the starting
	// board. The search is exponential in it. Zero means no limit.
	MaxObjects int
	// Memo is shared by every AI decision. If nil, each decision uses a fresh
	// memo.
	Memo game.Memo
}

// Console plays games of Nim between a human at a terminal and the AI.
type Console struct {
	in     LineReader
	out    io.Writer
	cfg    Config
	logger *slog.Logger
}

// NewTerminal creates a readline instance suitable for a Console.
func NewTerminal() (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          "> ",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		FuncFilterInputRune: filterInput,
	})
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// New creates a new Console reading from in and writing to out.
func New(in LineReader, out io.Writer, cfg Config, logger *slog.Logger) *Console {
	return &Console{
		in:     in,
		out:    out,
		cfg:    cfg,
		logger: logger,
	}
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) readLine(prompt string) (string, error) {
	c.in.SetPrompt(prompt)
	line, err := c.in.Readline()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return "", ErrQuit
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Run sets up a game from the player's answers and plays it to the end.
func (c *Console) Run(ctx context.Context) error {
	c.println("Welcome to the Nim Game!")
	c.println()

	g, err := c.setup(ctx)
	if err != nil {
		return err
	}

	c.logger.Debug(
		"game started",
		"piles", []int(g.Piles),
		"first", g.Turn)

	return c.Play(ctx, g)
}

func (c *Console) setup(ctx context.Context) (*game.Game, error) {
	var piles game.Piles
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := c.readInt("Enter number of piles: ")
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			c.println("The number of piles must be positive.")
			continue
		}
		if c.cfg.MaxObjects > 0 && n > c.cfg.MaxObjects {
			c.printf("Too many piles (%d). The limit is %d.\n", n, c.cfg.MaxObjects)
			continue
		}

		piles, err = c.readPiles(n)
		if err != nil {
			return nil, err
		}

		if c.cfg.MaxObjects > 0 && piles.Exceeds(c.cfg.MaxObjects) {
			c.printf("Too many objects. The limit is %d.\n", c.cfg.MaxObjects)
			continue
		}
		if piles.IsTerminal() {
			c.println("At least one pile must hold an object.")
			continue
		}
		break
	}

	for {
		first, err := c.readInt("Who goes first? (1 = You, 2 = AI): ")
		if err != nil {
			return nil, err
		}
		switch first {
		case 1:
			return game.NewGame(piles, game.Human)
		case 2:
			return game.NewGame(piles, game.AI)
		}
		c.println("Please answer 1 or 2.")
	}
}

func (c *Console) readInt(prompt string) (int, error) {
	for {
		line, err := c.readLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil {
			return n, nil
		}
		c.println("Please enter a number.")
	}
}

// readPiles reads n pile sizes, which may be spread over several lines.
func (c *Console) readPiles(n int) (game.Piles, error) {
	c.println("Enter pile sizes:")

	var piles game.Piles
	for len(piles) < n {
		line, err := c.readLine(fmt.Sprintf("pile %d> ", len(piles)+1))
		if err != nil {
			return nil, err
		}

		fields := strings.Fields(line)
		if len(fields) > n-len(piles) {
			c.printf("Too many pile sizes: expected %d more.\n", n-len(piles))
			continue
		}

		parsed, err := game.ParsePiles(fields)
		if err != nil {
			c.printf("Invalid pile size: %v\n", err)
			continue
		}
		piles = append(piles, parsed...)
	}
	return piles, nil
}

// Play alternates turns until the board is empty, then announces the winner.
func (c *Console) Play(ctx context.Context, g *game.Game) error {
	var opts []game.AIOption
	if c.cfg.Memo != nil {
		opts = append(opts, game.WithMemo(c.cfg.Memo))
	}
	ai := game.NewAI(g, opts...)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.println()
		c.println(g.Piles)

		if winner, ended := g.GameState(); ended {
			c.println()
			c.printf("Game over. Winner is %s!\n", winner)
			return nil
		}

		switch g.Turn {
		case game.Human:
			c.println()
			line, err := c.readLine("Your move (pile number & how many to remove): ")
			if err != nil {
				return err
			}

			m, err := parseMove(line)
			if err == nil {
				err = g.MakeMoveAs(game.Human, m)
			}
			if err != nil {
				c.logger.Debug(
					"rejected human move",
					"input", line,
					"err", err)
				c.println("Invalid move. Try again.")
			}

		case game.AI:
			c.println()
			c.println("AI is thinking...")

			m, err := ai.MakeMove()
			if err != nil {
				return fmt.Errorf("AI failed to move: %w", err)
			}

			c.logger.Debug(
				"AI moved",
				"pile", m.Pile+1,
				"amount", m.Amount,
				"piles", []int(g.Piles))
			c.printf("AI removes %d from pile %d\n", m.Amount, m.Pile+1)
		}
	}
}

// parseMove parses "<pile> <amount>" with a 1-based pile number.
func parseMove(line string) (game.Move, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return game.Move{}, fmt.Errorf("expected pile and amount, got %q", line)
	}
	pile, err := strconv.Atoi(fields[0])
	if err != nil {
		return game.Move{}, fmt.Errorf("invalid pile: %w", err)
	}
	amount, err := strconv.Atoi(fields[1])
	if err != nil {
		return game.Move{}, fmt.Errorf("invalid amount: %w", err)
	}
	return game.Move{Pile: pile - 1, Amount: amount}, nil
}
