package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/twipi/twinim/game"
)

type scriptedReader struct {
	lines   []string
	prompts []string
}

func (r *scriptedReader) SetPrompt(p string) {
	r.prompts = append(r.prompts, p)
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func newTestConsole(cfg Config, lines ...string) (*Console, *strings.Builder) {
	var out strings.Builder
	in := &scriptedReader{lines: lines}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(in, &out, cfg, logger), &out
}

func TestRunHumanWins(t *testing.T) {
	is := is.New(t)

	c, out := newTestConsole(Config{},
		"1",   // piles
		"2",   // sizes
		"1",   // human first
		"1 2", // take everything
	)
	is.NoErr(c.Run(context.Background()))
	is.True(strings.Contains(out.String(), "Pile 1: 0"))
	is.True(strings.HasSuffix(out.String(), "Game over. Winner is You!\n"))
}

func TestRunAIWins(t *testing.T) {
	is := is.New(t)

	// Nim-sum of 3 4 5 is non-zero, so the AI moving first always wins.
	c, out := newTestConsole(Config{Memo: game.NewSharedMemo()},
		"3",
		"3 4",
		"5",
		"2",
		"1 1", "2 1", "3 1", "1 1", "2 1", "3 1", "1 1", "2 1", "3 1",
		"1 1", "2 1", "3 1", "1 1", "2 1", "3 1",
	)
	is.NoErr(c.Run(context.Background()))
	is.True(strings.Contains(out.String(), "AI removes 2 from pile 1\n"))
	is.True(strings.HasSuffix(out.String(), "Game over. Winner is AI!\n"))
}

func TestRunInvalidInput(t *testing.T) {
	is := is.New(t)

	c, out := newTestConsole(Config{MaxObjects: 10},
		"zero",
		"0",
		// more piles than objects allowed
		"1000000000000000000",
		// over the limit
		"1", "20",
		// the sum overflows
		"2", "9223372036854775807 9223372036854775807",
		// empty board
		"1", "0",
		// too many sizes, then a negative one
		"1", "1 2", "-1", "1",
		// bad first player
		"3",
		"1",
		"2 1", "1 2", "1 0", "x y",
		"1 1",
	)
	is.NoErr(c.Run(context.Background()))

	s := out.String()
	is.True(strings.Contains(s, "Please enter a number."))
	is.True(strings.Contains(s, "The number of piles must be positive."))
	is.True(strings.Contains(s, "Too many piles (1000000000000000000). The limit is 10."))
	is.Equal(strings.Count(s, "Too many objects. The limit is 10."), 2)
	is.True(strings.Contains(s, "Too many pile sizes: expected 1 more."))
	is.True(strings.Contains(s, "At least one pile must hold an object."))
	is.True(strings.Contains(s, "Invalid pile size"))
	is.True(strings.Contains(s, "Please answer 1 or 2."))
	is.Equal(strings.Count(s, "Invalid move. Try again."), 4)
	is.True(strings.HasSuffix(s, "Game over. Winner is You!\n"))
}

func TestRunQuit(t *testing.T) {
	is := is.New(t)

	c, _ := newTestConsole(Config{}, "2", "1 1", "1")
	err := c.Run(context.Background())
	is.True(errors.Is(err, ErrQuit))
}

func TestRunHugePileCountWithoutLimit(t *testing.T) {
	is := is.New(t)

	c, out := newTestConsole(Config{}, "1000000000000000000", "1")
	err := c.Run(context.Background())
	is.True(errors.Is(err, ErrQuit))
	is.True(strings.Contains(out.String(), "Enter pile sizes:"))
}

func TestRunCanceled(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := newTestConsole(Config{}, "1", "1", "1")
	err := c.Run(ctx)
	is.True(errors.Is(err, context.Canceled))
}

func TestParseMove(t *testing.T) {
	is := is.New(t)

	m, err := parseMove(" 2   3 ")
	is.NoErr(err)
	is.Equal(m, game.Move{Pile: 1, Amount: 3})

	for _, line := range []string{"", "1", "1 2 3", "a 1", "1 b"} {
		_, err := parseMove(line)
		is.True(err != nil)
	}
}
