package tictactoe

import (
	"fmt"

	"github.com/kmoholt/starcade/internal/domain"
)

type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// TrackedMark is the mark whose wins count towards the current user's
// achievement record. Both marks are played from the same seat; only X
// games count as wins.
const TrackedMark = X

const Cells = 9

var winningTriples = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Snapshot struct {
	Board         [Cells]Mark
	CurrentPlayer Mark
	Active        bool
	Winner        Mark
	Tie           bool
}

// Engine is one tic-tac-toe game. It is not safe for concurrent use; the
// session layer serializes access per user.
type Engine struct {
	board         [Cells]Mark
	currentPlayer Mark
	active        bool
	winner        Mark
	tie           bool
	reported      bool
	onResult      func(outcome domain.TicTacToeOutcome)
}

// New creates an inactive engine with an empty board. onResult is invoked
// exactly once when the game reaches a terminal state.
func New(onResult func(outcome domain.TicTacToeOutcome)) *Engine {
	engine := &Engine{onResult: onResult}
	engine.reset()
	return engine
}

func (e *Engine) reset() {
	e.board = [Cells]Mark{}
	e.currentPlayer = X
	e.active = false
	e.winner = Empty
	e.tie = false
	e.reported = false
}

// Start resets the board and activates the game. X always moves first.
func (e *Engine) Start() {
	e.reset()
	e.active = true
}

// PlaceMark marks the given cell for the current player. Marks on an
// inactive game or an occupied cell are ignored, matching the original
// click handling.
func (e *Engine) PlaceMark(cellIndex int) error {
	if cellIndex < 0 || cellIndex >= Cells {
		return fmt.Errorf("cell index out of range: %d", cellIndex)
	}
	if !e.active || e.board[cellIndex] != Empty {
		return nil
	}

	e.board[cellIndex] = e.currentPlayer

	// Win check always precedes the tie check: a full board with a
	// winning line is a win.
	if winner := e.findWinner(); winner != Empty {
		e.winner = winner
		e.finish()
		return nil
	}
	if e.boardFull() {
		e.tie = true
		e.finish()
		return nil
	}

	if e.currentPlayer == X {
		e.currentPlayer = O
	} else {
		e.currentPlayer = X
	}
	return nil
}

func (e *Engine) State() Snapshot {
	return Snapshot{
		Board:         e.board,
		CurrentPlayer: e.currentPlayer,
		Active:        e.active,
		Winner:        e.winner,
		Tie:           e.tie,
	}
}

func (e *Engine) findWinner() Mark {
	for _, triple := range winningTriples {
		a, b, c := triple[0], triple[1], triple[2]
		if e.board[a] != Empty && e.board[a] == e.board[b] && e.board[a] == e.board[c] {
			return e.board[a]
		}
	}
	return Empty
}

func (e *Engine) boardFull() bool {
	for _, mark := range e.board {
		if mark == Empty {
			return false
		}
	}
	return true
}

func (e *Engine) finish() {
	e.active = false

	if e.reported {
		return
	}
	e.reported = true

	if e.onResult == nil {
		return
	}

	switch {
	case e.winner == TrackedMark:
		e.onResult(domain.OutcomeWin)
	case e.tie:
		e.onResult(domain.OutcomeTie)
	default:
		e.onResult(domain.OutcomeLoss)
	}
}
