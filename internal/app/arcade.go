package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/kmoholt/starcade/internal/domain"
	"github.com/kmoholt/starcade/internal/games/fallingstars"
	"github.com/kmoholt/starcade/internal/games/tictactoe"
	"github.com/kmoholt/starcade/internal/logging"
	"github.com/kmoholt/starcade/internal/reporting"
	"github.com/kmoholt/starcade/internal/scheduling"
)

type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

func ParseDirection(raw string) (Direction, error) {
	switch raw {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return "", fmt.Errorf("invalid direction: %q", raw)
}

// Arcade holds the active game engines, one per game per session.
// Starting a game replaces the session's previous engine for that game.
type Arcade struct {
	// Background context for recording results of games that end on a
	// timer, outside any request. Carries the process logger.
	ctx context.Context

	scheduler scheduling.Scheduler

	recordFallingStars RecordFallingStarsResult
	recordTicTacToe    RecordTicTacToeResult

	fallingStars *ttlcache.Cache[string, *fallingstars.Engine]

	// tictactoe engines are not safe for concurrent use
	ticTacToeMutex sync.Mutex
	ticTacToe      *ttlcache.Cache[string, *tictactoe.Engine]
}

func NewArcade(
	ctx context.Context,
	scheduler scheduling.Scheduler,
	recordFallingStars RecordFallingStarsResult,
	recordTicTacToe RecordTicTacToeResult,
	engineTTL time.Duration,
) (*Arcade, func()) {
	fallingStarsCache := ttlcache.New(
		ttlcache.WithTTL[string, *fallingstars.Engine](engineTTL),
	)
	ticTacToeCache := ttlcache.New(
		ttlcache.WithTTL[string, *tictactoe.Engine](engineTTL),
	)

	// Abandoned falling stars engines keep timers running until aborted
	fallingStarsCache.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *fallingstars.Engine]) {
		item.Value().Abort()
	})

	go fallingStarsCache.Start()
	go ticTacToeCache.Start()

	stop := func() {
		fallingStarsCache.Stop()
		ticTacToeCache.Stop()
		fallingStarsCache.DeleteAll()
		ticTacToeCache.DeleteAll()
	}

	return &Arcade{
		ctx:                ctx,
		scheduler:          scheduler,
		recordFallingStars: recordFallingStars,
		recordTicTacToe:    recordTicTacToe,
		fallingStars:       fallingStarsCache,
		ticTacToe:          ticTacToeCache,
	}, stop
}

func (a *Arcade) StartFallingStars(ctx context.Context, token, username string, difficulty fallingstars.Difficulty) fallingstars.Snapshot {
	if existing := a.fallingStars.Get(token); existing != nil {
		existing.Value().Abort()
	}

	engine := fallingstars.New(a.scheduler, nil, func(finalScore int) {
		if _, err := a.recordFallingStars(a.ctx, username, finalScore); err != nil {
			err = fmt.Errorf("failed to record falling stars result: %w", err)
			logging.FromContext(a.ctx).Error("Failed to record game result", "error", err.Error())
			reporting.Report(a.ctx, err, map[string]string{
				"username":   username,
				"finalScore": fmt.Sprint(finalScore),
			})
		}
	})

	a.fallingStars.Set(token, engine, ttlcache.DefaultTTL)
	engine.Start(difficulty)

	return engine.State()
}

func (a *Arcade) MoveCatcher(ctx context.Context, token string, direction Direction) (fallingstars.Snapshot, error) {
	item := a.fallingStars.Get(token)
	if item == nil {
		return fallingstars.Snapshot{}, domain.ErrNoActiveGame
	}
	engine := item.Value()

	switch direction {
	case Left:
		engine.MoveLeft()
	case Right:
		engine.MoveRight()
	default:
		return fallingstars.Snapshot{}, fmt.Errorf("invalid direction: %q", direction)
	}

	return engine.State(), nil
}

func (a *Arcade) FallingStarsState(ctx context.Context, token string) (fallingstars.Snapshot, error) {
	item := a.fallingStars.Get(token)
	if item == nil {
		return fallingstars.Snapshot{}, domain.ErrNoActiveGame
	}
	return item.Value().State(), nil
}

func (a *Arcade) StartTicTacToe(ctx context.Context, token, username string) tictactoe.Snapshot {
	a.ticTacToeMutex.Lock()
	defer a.ticTacToeMutex.Unlock()

	engine := tictactoe.New(func(outcome domain.TicTacToeOutcome) {
		if _, err := a.recordTicTacToe(a.ctx, username, outcome); err != nil {
			err = fmt.Errorf("failed to record tic-tac-toe result: %w", err)
			logging.FromContext(a.ctx).Error("Failed to record game result", "error", err.Error())
			reporting.Report(a.ctx, err, map[string]string{
				"username": username,
				"outcome":  string(outcome),
			})
		}
	})

	a.ticTacToe.Set(token, engine, ttlcache.DefaultTTL)
	engine.Start()

	return engine.State()
}

func (a *Arcade) PlaceTicTacToeMark(ctx context.Context, token string, cellIndex int) (tictactoe.Snapshot, error) {
	a.ticTacToeMutex.Lock()
	defer a.ticTacToeMutex.Unlock()

	item := a.ticTacToe.Get(token)
	if item == nil {
		return tictactoe.Snapshot{}, domain.ErrNoActiveGame
	}
	engine := item.Value()

	if err := engine.PlaceMark(cellIndex); err != nil {
		return tictactoe.Snapshot{}, err
	}

	return engine.State(), nil
}

func (a *Arcade) TicTacToeState(ctx context.Context, token string) (tictactoe.Snapshot, error) {
	a.ticTacToeMutex.Lock()
	defer a.ticTacToeMutex.Unlock()

	item := a.ticTacToe.Get(token)
	if item == nil {
		return tictactoe.Snapshot{}, domain.ErrNoActiveGame
	}
	return item.Value().State(), nil
}
