package game

import (
	"encoding/binary"
	"errors"
	"slices"
)

// Scores are always from the AI's point of view.
const (
	Loss = -1
	Win  = +1
)

// ErrNoMoves is returned when a move is requested on a board with no objects
// left.
var ErrNoMoves = errors.New("no legal moves")

// CanonicalKey identifies a position independently of the order of its piles.
// Two positions with equal keys have the same score.
type CanonicalKey struct {
	player Player
	piles  string // sorted pile sizes, uvarint-packed
}

// CanonicalKeyOf returns the canonical key of the position. The piles are not
// modified.
func CanonicalKeyOf(piles Piles, player Player) CanonicalKey {
	sorted := slices.Clone(piles)
	slices.Sort(sorted)

	buf := make([]byte, 0, len(sorted)+1)
	for _, n := range sorted {
		buf = binary.AppendUvarint(buf, uint64(n))
	}
	return CanonicalKey{player: player, piles: string(buf)}
}

// Child is a position reachable in one move.
type Child struct {
	Move   Move
	Piles  Piles
	Player Player
}

// possibleMoves enumerates legal moves by ascending pile index, then by
// ascending amount.
func possibleMoves(piles Piles) func(func(Move) bool) {
	return func(yield func(Move) bool) {
		for i, n := range piles {
			for take := 1; take <= n; take++ {
				if !yield(Move{Pile: i, Amount: take}) {
					return
				}
			}
		}
	}
}

// Children returns every position reachable from the given one in one move,
// in the deterministic order used for tie-breaking.
func Children(piles Piles, player Player) []Child {
	var children []Child
	possibleMoves(piles)(func(m Move) bool {
		next := piles.Clone()
		next[m.Pile] -= m.Amount
		children = append(children, Child{
			Move:   m,
			Piles:  next,
			Player: player.Opponent(),
		})
		return true
	})
	return children
}

func terminalScore(toMove Player) int {
	if toMove == AI {
		return Loss
	}
	return Win
}

// Evaluate returns the minimax score of the position with the given player to
// move: Win if the AI wins under optimal play, Loss otherwise. If memo is nil,
// the full game tree is searched.
func Evaluate(piles Piles, player Player, memo Memo) int {
	return evaluate(piles.Clone(), player, memo)
}

// evaluate applies moves to piles in place and undoes them before returning.
func evaluate(piles Piles, player Player, memo Memo) int {
	if piles.IsTerminal() {
		return terminalScore(player)
	}

	var key CanonicalKey
	if memo != nil {
		key = CanonicalKeyOf(piles, player)
		if score, ok := memo.Load(key); ok {
			return score
		}
	}

	var best int
	if player == AI {
		best = Loss
	} else {
		best = Win
	}

	possibleMoves(piles)(func(m Move) bool {
		piles[m.Pile] -= m.Amount
		score := evaluate(piles, player.Opponent(), memo)
		piles[m.Pile] += m.Amount

		if player == AI {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
		return true
	})

	if memo != nil {
		memo.Store(key, best)
	}
	return best
}

// BestMove returns the AI's optimal move on the given board using a fresh
// memo. Ties are broken by the lowest pile index, then the smallest amount.
func BestMove(piles Piles) (Move, error) {
	m, _, err := BestMoveWith(piles, NewMapMemo())
	return m, err
}

// BestMoveWith is like [BestMove], but it searches with the given memo and
// also returns the score of the chosen move.
func BestMoveWith(piles Piles, memo Memo) (Move, int, error) {
	if piles.IsTerminal() {
		return Move{}, 0, ErrNoMoves
	}

	root := piles.Clone()

	var bestMove Move
	bestScore := Loss
	found := false

	possibleMoves(root)(func(m Move) bool {
		root[m.Pile] -= m.Amount
		score := evaluate(root, Human, memo)
		root[m.Pile] += m.Amount

		if !found || score > bestScore {
			bestMove = m
			bestScore = score
			found = true
		}
		return true
	})

	return bestMove, bestScore, nil
}

// AIPlayer represents the AI player of a game.
// The AI searches the whole game tree with the minimax algorithm.
type AIPlayer struct {
	game *Game
	memo Memo
}

// AIOption configures an AIPlayer.
type AIOption func(*AIPlayer)

// WithMemo makes the AI search with the given memo on every move instead of a
// fresh one per move.
func WithMemo(memo Memo) AIOption {
	return func(a *AIPlayer) { a.memo = memo }
}

// NewAI creates a new AI player for the game.
func NewAI(g *Game, opts ...AIOption) *AIPlayer {
	a := &AIPlayer{game: g}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NextMove returns the next move that the AI should make.
func (a *AIPlayer) NextMove() (Move, error) {
	if a.game.Piles.IsTerminal() {
		return Move{}, ErrNoMoves
	}
	if a.game.Turn != AI {
		return Move{}, ErrNotYourTurn
	}
	memo := a.memo
	if memo == nil {
		memo = NewMapMemo()
	}
	m, _, err := BestMoveWith(a.game.Piles, memo)
	return m, err
}

// MakeMove makes the next move for the AI and returns it.
func (a *AIPlayer) MakeMove() (Move, error) {
	m, err := a.NextMove()
	if err != nil {
		return Move{}, err
	}
	if err := a.game.MakeMove(m); err != nil {
		return Move{}, err
	}
	return m, nil
}
