package fallingstars

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kmoholt/starcade/internal/scheduling"
)

// Logical playfield. The original game used the live browser window; fixing
// the geometry keeps the simulation deterministic.
const (
	PlayfieldWidth  = 800
	PlayfieldHeight = 600
	ItemSize        = 20
	CatcherWidth    = 100
	CatcherStep     = 20
	MaxMisses       = 3

	catcherTop        = PlayfieldHeight - 40
	fallStep          = 5
	fallTick          = 20 * time.Millisecond
	spawnAcceleration = 0.95
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(raw), nil
	}
	return "", fmt.Errorf("unknown difficulty: %q", raw)
}

func (d Difficulty) baseSpawnInterval() time.Duration {
	switch d {
	case DifficultyEasy:
		return 3000 * time.Millisecond
	case DifficultyMedium:
		return 2000 * time.Millisecond
	case DifficultyHard:
		return 1500 * time.Millisecond
	}
	return 2000 * time.Millisecond
}

type ItemPosition struct {
	X int
	Y int
}

// Snapshot is the render state handed to the presentation layer.
type Snapshot struct {
	Score     int
	LivesLeft int
	Running   bool
	CatcherX  int
	Items     []ItemPosition
}

type item struct {
	x          int
	y          int
	cancelTick scheduling.CancelFunc
}

// Engine runs one Falling Stars session. All timing goes through the
// injected scheduler; all callbacks take the engine mutex, so state
// transitions are serialized even though item ticks interleave freely.
type Engine struct {
	mu        sync.Mutex
	scheduler scheduling.Scheduler
	randFloat func() float64
	onResult  func(finalScore int)

	score         int
	missCount     int
	spawnInterval time.Duration
	running       bool
	reported      bool
	catcherX      int
	items         []*item
	cancelSpawn   scheduling.CancelFunc
}

// New creates a stopped engine. onResult is invoked exactly once per
// completed (not aborted) game, with the final score.
func New(scheduler scheduling.Scheduler, randFloat func() float64, onResult func(finalScore int)) *Engine {
	if randFloat == nil {
		randFloat = rand.Float64
	}
	return &Engine{
		scheduler: scheduler,
		randFloat: randFloat,
		onResult:  onResult,
	}
}

// Start begins a new game, aborting any previous run first so no stale
// timers can score into the new session.
func (e *Engine) Start(difficulty Difficulty) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.abortLocked()

	e.score = 0
	e.missCount = 0
	e.spawnInterval = difficulty.baseSpawnInterval()
	e.running = true
	e.reported = false
	e.catcherX = (PlayfieldWidth - CatcherWidth) / 2

	e.cancelSpawn = e.scheduler.AfterFunc(e.spawnInterval, e.spawn)
}

// Abort stops the game without reporting a result.
func (e *Engine) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abortLocked()
}

func (e *Engine) abortLocked() {
	if e.cancelSpawn != nil {
		e.cancelSpawn()
		e.cancelSpawn = nil
	}
	for _, it := range e.items {
		it.cancelTick()
	}
	e.items = nil
	e.running = false
}

func (e *Engine) MoveLeft() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.catcherX -= CatcherStep
	if e.catcherX < 0 {
		e.catcherX = 0
	}
}

func (e *Engine) MoveRight() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.catcherX += CatcherStep
	if e.catcherX > PlayfieldWidth-CatcherWidth {
		e.catcherX = PlayfieldWidth - CatcherWidth
	}
}

func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]ItemPosition, len(e.items))
	for i, it := range e.items {
		items[i] = ItemPosition{X: it.x, Y: it.y}
	}

	return Snapshot{
		Score:     e.score,
		LivesLeft: MaxMisses - e.missCount,
		Running:   e.running,
		CatcherX:  e.catcherX,
		Items:     items,
	}
}

func (e *Engine) spawn() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	it := &item{
		x: int(e.randFloat() * float64(PlayfieldWidth-ItemSize)),
		y: 0,
	}
	e.items = append(e.items, it)
	it.cancelTick = e.scheduler.AfterFunc(fallTick, func() { e.advanceItem(it) })

	e.spawnInterval = time.Duration(float64(e.spawnInterval) * spawnAcceleration)
	e.cancelSpawn = e.scheduler.AfterFunc(e.spawnInterval, e.spawn)
}

func (e *Engine) advanceItem(it *item) {
	e.mu.Lock()

	if !e.running {
		e.mu.Unlock()
		return
	}

	it.y += fallStep

	caught := it.y+ItemSize >= catcherTop &&
		it.x < e.catcherX+CatcherWidth &&
		it.x+ItemSize > e.catcherX

	switch {
	case caught:
		e.removeItemLocked(it)
		e.score++
	case it.y > PlayfieldHeight:
		e.removeItemLocked(it)
		// Guard against life decrements past the life count for miss
		// events still in flight after the game ended.
		if e.missCount < MaxMisses {
			e.missCount++
		}
		if e.missCount == MaxMisses {
			finalScore := e.score
			report := e.endGameLocked()
			e.mu.Unlock()
			if report {
				e.onResult(finalScore)
			}
			return
		}
	default:
		it.cancelTick = e.scheduler.AfterFunc(fallTick, func() { e.advanceItem(it) })
	}

	e.mu.Unlock()
}

func (e *Engine) removeItemLocked(target *item) {
	target.cancelTick()
	for i, it := range e.items {
		if it == target {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return
		}
	}
}

// endGameLocked stops all timers and reports whether the caller should
// deliver the result. The reported flag makes delivery exactly-once.
func (e *Engine) endGameLocked() bool {
	e.abortLocked()

	if e.reported {
		return false
	}
	e.reported = true
	return e.onResult != nil
}
