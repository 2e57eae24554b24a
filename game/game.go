// Package game implements a game of Nim played under the normal play
// convention: the player who removes the last object wins.
package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrGameOver is returned when a move is made on a board with no objects
	// left.
	ErrGameOver = errors.New("game is over")
	// ErrInvalidPile is returned when a move refers to a pile that does not
	// exist.
	ErrInvalidPile = errors.New("invalid pile")
	// ErrInvalidAmount is returned when a move removes zero objects or more
	// objects than the pile holds.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNotYourTurn is returned when a player moves out of turn.
	ErrNotYourTurn = errors.New("not your turn")
)

// Player represents a player.
type Player uint8

const (
	NoPlayer Player = iota
	Human
	AI
)

// String returns the string representation of the player.
func (p Player) String() string {
	switch p {
	case Human:
		return "You"
	case AI:
		return "AI"
	default:
		return "nobody"
	}
}

// Opponent returns the opponent of the player.
func (p Player) Opponent() Player {
	switch p {
	case Human:
		return AI
	case AI:
		return Human
	default:
		return NoPlayer
	}
}

// Piles is a sequence of pile sizes. The order of the piles does not change
// the value of a position, but it identifies which pile a move touches.
type Piles []int

// ParsePiles parses pile sizes from the given fields.
func ParsePiles(fields []string) (Piles, error) {
	piles := make(Piles, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("pile %d: %w", i+1, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("pile %d: negative size %d", i+1, n)
		}
		piles[i] = n
	}
	return piles, nil
}

// IsTerminal returns true if every pile is empty. An empty sequence of piles
// is terminal.
func (p Piles) IsTerminal() bool {
	return lo.EveryBy(p, func(n int) bool { return n == 0 })
}

// Total returns the number of objects left on the board. It is also the
// longest possible sequence of moves from this position.
func (p Piles) Total() int {
	return lo.Sum(p)
}

// Exceeds reports whether the board holds more than limit objects. Unlike
// [Piles.Total], it cannot overflow.
func (p Piles) Exceeds(limit int) bool {
	left := limit
	for _, n := range p {
		if n > left {
			return true
		}
		left -= n
	}
	return false
}

// NimSum returns the XOR of all pile sizes. A position is lost for the player
// to move iff its nim-sum is zero.
func (p Piles) NimSum() int {
	var x int
	for _, n := range p {
		x ^= n
	}
	return x
}

// Clone returns a copy of the piles.
func (p Piles) Clone() Piles {
	return append(Piles(nil), p...)
}

func (p Piles) String() string {
	var s strings.Builder
	s.WriteString("Current piles:")
	for i, n := range p {
		fmt.Fprintf(&s, "\nPile %d: %d", i+1, n)
	}
	return s.String()
}

// Move represents taking Amount objects from the pile at index Pile. Pile is
// zero-based.
type Move struct {
	Pile   int
	Amount int
}

func (m Move) String() string {
	return fmt.Sprintf("remove %d from pile %d", m.Amount, m.Pile+1)
}

// Game represents a game of Nim.
type Game struct {
	Piles Piles
	// Turn is the player to move.
	Turn Player
	// LastMover is the player who made the latest move, or NoPlayer if no
	// move has been made yet.
	LastMover Player
	Turns     int
}

// NewGame creates a new game of Nim with the given piles. The piles are
// copied.
func NewGame(piles Piles, first Player) (*Game, error) {
	if first != Human && first != AI {
		return nil, fmt.Errorf("invalid first player %d", first)
	}
	for i, n := range piles {
		if n < 0 {
			return nil, fmt.Errorf("pile %d: negative size %d", i+1, n)
		}
	}
	return &Game{
		Piles: piles.Clone(),
		Turn:  first,
	}, nil
}

func (g *Game) String() string {
	return fmt.Sprintf("turn %d (%s to move):\n%s", g.Turns, g.Turn, g.Piles)
}

// ValidateMove checks that the move is legal for the player to move.
func (g *Game) ValidateMove(m Move) error {
	if g.Piles.IsTerminal() {
		return ErrGameOver
	}
	if m.Pile < 0 || m.Pile >= len(g.Piles) {
		return fmt.Errorf("%w: %d", ErrInvalidPile, m.Pile+1)
	}
	if m.Amount <= 0 || m.Amount > g.Piles[m.Pile] {
		return fmt.Errorf("%w: cannot remove %d from pile %d holding %d",
			ErrInvalidAmount, m.Amount, m.Pile+1, g.Piles[m.Pile])
	}
	return nil
}

// MakeMove makes a move for the current player.
func (g *Game) MakeMove(m Move) error {
	if err := g.ValidateMove(m); err != nil {
		return err
	}
	g.Piles[m.Pile] -= m.Amount
	g.LastMover = g.Turn
	g.Turn = g.Turn.Opponent()
	g.Turns++
	return nil
}

// MakeMoveAs makes a move for the given player, failing if it is not that
// player's turn.
func (g *Game) MakeMoveAs(p Player, m Move) error {
	if g.Turn != p {
		return ErrNotYourTurn
	}
	return g.MakeMove(m)
}

// HasEnded is a convenience method around [GameState] that returns true if
// the game has ended.
func (g *Game) HasEnded() bool {
	_, ended := g.GameState()
	return ended
}

// GameState returns the state of the game.
// If the board is empty, the player facing it has lost, so the winner is the
// opponent of the player to move. Otherwise, returns NoPlayer and false.
func (g *Game) GameState() (winner Player, ended bool) {
	if !g.Piles.IsTerminal() {
		return NoPlayer, false
	}
	return g.Turn.Opponent(), true
}

// Clone creates a deep copy of the game.
func (g *Game) Clone() *Game {
	g2 := *g
	g2.Piles = g.Piles.Clone()
	return &g2
}
