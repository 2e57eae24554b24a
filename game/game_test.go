package game

import (
	"errors"
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestNewGame(t *testing.T) {
	is := is.New(t)

	piles := Piles{1, 2}
	g, err := NewGame(piles, Human)
	is.NoErr(err)
	piles[0] = 9
	is.Equal(g.Piles, Piles{1, 2}) // piles are copied

	_, err = NewGame(Piles{1, -1}, Human)
	is.True(err != nil)

	_, err = NewGame(Piles{1}, NoPlayer)
	is.True(err != nil)
}

func TestValidateMove(t *testing.T) {
	g, err := NewGame(Piles{3, 0}, Human)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		move Move
		want error
	}{
		{"valid", Move{Pile: 0, Amount: 3}, nil},
		{"negative pile", Move{Pile: -1, Amount: 1}, ErrInvalidPile},
		{"pile out of range", Move{Pile: 2, Amount: 1}, ErrInvalidPile},
		{"zero amount", Move{Pile: 0, Amount: 0}, ErrInvalidAmount},
		{"too many", Move{Pile: 0, Amount: 4}, ErrInvalidAmount},
		{"empty pile", Move{Pile: 1, Amount: 1}, ErrInvalidAmount},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := g.ValidateMove(test.move)
			if test.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, test.want) {
				t.Errorf("got error %v, want %v", err, test.want)
			}
		})
	}
}

func TestHumanEmptiesBoard(t *testing.T) {
	is := is.New(t)

	g, err := NewGame(Piles{2}, Human)
	is.NoErr(err)
	is.True(!g.HasEnded())

	is.NoErr(g.MakeMoveAs(Human, Move{Pile: 0, Amount: 2}))
	is.True(g.Piles.IsTerminal())
	is.Equal(g.Turn, AI)
	is.Equal(g.LastMover, Human)
	is.Equal(g.Turns, 1)

	winner, ended := g.GameState()
	is.True(ended)
	is.Equal(winner, Human)

	is.True(errors.Is(g.MakeMove(Move{Pile: 0, Amount: 1}), ErrGameOver))
}

func TestMakeMoveAsOutOfTurn(t *testing.T) {
	is := is.New(t)

	g, err := NewGame(Piles{2}, AI)
	is.NoErr(err)
	is.True(errors.Is(g.MakeMoveAs(Human, Move{Pile: 0, Amount: 1}), ErrNotYourTurn))
	is.Equal(g.Piles, Piles{2})
}

func TestPiles(t *testing.T) {
	is := is.New(t)

	is.True(Piles{}.IsTerminal())
	is.True(Piles{0, 0, 0}.IsTerminal())
	is.True(!Piles{0, 1}.IsTerminal())

	is.Equal(Piles{3, 4, 5}.Total(), 12)
	is.Equal(Piles{3, 4, 5}.NimSum(), 2)
	is.Equal(Piles{1, 1}.NimSum(), 0)

	is.True(!Piles{3, 4, 5}.Exceeds(12))
	is.True(Piles{3, 4, 5}.Exceeds(11))
	is.True(!Piles{}.Exceeds(0))
	is.True(Piles{math.MaxInt, math.MaxInt}.Exceeds(30)) // would wrap if summed
	is.True(Piles{1, math.MaxInt}.Exceeds(math.MaxInt))

	is.Equal(Piles{3, 4}.String(), "Current piles:\nPile 1: 3\nPile 2: 4")
	is.Equal(Move{Pile: 1, Amount: 2}.String(), "remove 2 from pile 2")
}

func TestParsePiles(t *testing.T) {
	is := is.New(t)

	piles, err := ParsePiles([]string{"3", "0", "5"})
	is.NoErr(err)
	is.Equal(piles, Piles{3, 0, 5})

	_, err = ParsePiles([]string{"3", "x"})
	is.True(err != nil)

	_, err = ParsePiles([]string{"-2"})
	is.True(err != nil)
}

func TestClone(t *testing.T) {
	is := is.New(t)

	g, err := NewGame(Piles{1, 2}, Human)
	is.NoErr(err)
	g2 := g.Clone()
	is.NoErr(g2.MakeMove(Move{Pile: 1, Amount: 2}))
	is.Equal(g.Piles, Piles{1, 2})
	is.Equal(g.Turn, Human)
}
