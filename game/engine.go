package game

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pongarena/pongarena-backend/models"
)

// Store is the slice of the shared state store the engine needs. Every
// read-modify-write of a session happens inside WithSessionLock.
type Store interface {
	LoadSession(ctx context.Context, id string) (*Session, error)
	SaveSession(ctx context.Context, id string, s *Session) error
	WithSessionLock(ctx context.Context, id string, fn func() error) error
}

// errLoopDone stops the tick loop from inside the locked section.
var errLoopDone = errors.New("tick loop done")

// Engine runs the authoritative tick loop for one session. Exactly one engine
// may run per session; the caller guards that with the stored Running flag
// checked-and-set under the session lock.
type Engine struct {
	sessionID string
	store     Store
	broadcast func(models.GameUpdateMessage)
}

func NewEngine(sessionID string, store Store, broadcast func(models.GameUpdateMessage)) *Engine {
	return &Engine{
		sessionID: sessionID,
		store:     store,
		broadcast: broadcast,
	}
}

// Run ticks the session at the fixed rate until the session stops, its state
// disappears, or ctx is canceled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.tick(ctx) {
				return
			}
		}
	}
}

// tick advances one simulation step under the session lock and broadcasts the
// result after releasing it. It reports whether the loop should keep running.
func (e *Engine) tick(ctx context.Context) bool {
	var snapshot models.GameState

	err := e.store.WithSessionLock(ctx, e.sessionID, func() error {
		s, err := e.store.LoadSession(ctx, e.sessionID)
		if err != nil {
			return err
		}
		if !s.Running {
			return errLoopDone
		}
		if s.PlayerCount() != 2 {
			s.Running = false
			if err := e.store.SaveSession(ctx, e.sessionID, s); err != nil {
				return err
			}
			return errLoopDone
		}
		Step(s)
		if err := e.store.SaveSession(ctx, e.sessionID, s); err != nil {
			return err
		}
		snapshot = s.State()
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errLoopDone), errors.Is(err, ErrSessionNotFound):
		return false
	case errors.Is(err, context.Canceled):
		return false
	default:
		// Lock contention or a transient store error: skip this cycle.
		log.Printf("Session %s: tick skipped: %v", e.sessionID, err)
		return true
	}

	e.broadcast(models.GameUpdateMessage{Type: "game_update", GameState: snapshot})
	return true
}
