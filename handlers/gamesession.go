package handlers

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "net/http"
    "sync"
    "time"

    "github.com/gorilla/mux"

    "github.com/pongarena/pongarena-backend/game"
    "github.com/pongarena/pongarena-backend/models"
)

// Tick loops started by this process, so a disconnect can cancel the loop's
// sleep promptly instead of waiting for it to observe the missing state.
var sessionLoops = struct {
    sync.Mutex
    cancels map[string]context.CancelFunc
}{cancels: make(map[string]context.CancelFunc)}

// Per-session action traces, archived when the session ends.
var (
    sessionActions      = make(map[string][]models.SessionAction)
    sessionActionsMutex = &sync.Mutex{}
)

// GameWsHandler attaches a player to the session named in the URL and serves
// the game channel until the match ends or the player leaves.
func GameWsHandler(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    groupName := vars["game_group_name"]

    c, err := upgrade(w, r)
    if err != nil {
        return
    }
    go c.writePump()

    ctx := context.Background()
    if err := store.WaitReady(ctx); err != nil {
        log.Printf("Game attach for %s failed: %v", c.userID, err)
        hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Game state is unavailable, try again later."})
        c.ws.Close()
        close(c.send)
        return
    }

    role, state, startLoop, err := joinSession(ctx, groupName, c.userID)
    if err != nil {
        // A full session or an unusable store: close without a payload.
        log.Printf("Rejecting %s from session %s: %v", c.userID, groupName, err)
        c.ws.Close()
        close(c.send)
        return
    }

    hub.Join(groupName, c)
    hub.SendTo(c, models.GameInitMessage{Type: "game_init", PlayerRole: role, GameState: state})
    recordAction(groupName, c.userID, "join")
    log.Printf("Player %s joined session %s as %s", c.userID, groupName, role)

    if startLoop {
        startTickLoop(groupName)
        recordAction(groupName, "server", "start")
    }

    defer func() {
        hub.Leave(groupName, c)
        c.ws.Close()
        endSession(ctx, groupName, c.userID)
    }()

    c.readLoop(func(message []byte) {
        var action models.ClientAction
        if err := json.Unmarshal(message, &action); err != nil {
            log.Printf("Invalid message from %s: %v", c.userID, err)
            return
        }

        switch action.Action {
        case "move":
            var msg models.MoveMessage
            if err := json.Unmarshal(message, &msg); err != nil {
                log.Printf("Invalid move from %s: %v", c.userID, err)
                return
            }
            handleMove(ctx, groupName, role, msg.Key)
        default:
            log.Printf("Unhandled game action from %s: %s", c.userID, action.Action)
        }
    })
}

// joinSession assigns the caller a role under the session lock. The first
// joiner initializes fresh state; the second flips the session to running.
// startLoop reports whether this call made the session runnable, i.e. whether
// the caller must start the one tick loop.
func joinSession(ctx context.Context, groupName, identity string) (role string, state models.GameState, startLoop bool, err error) {
    err = store.WithSessionLock(ctx, groupName, func() error {
        session, loadErr := store.LoadSession(ctx, groupName)
        if errors.Is(loadErr, game.ErrSessionNotFound) {
            session = game.NewSession(groupName)
        } else if loadErr != nil {
            return loadErr
        }

        assigned, assignErr := session.AssignRole(identity)
        if assignErr != nil {
            return assignErr
        }
        role = assigned

        if session.PlayerCount() == 2 && !session.Running {
            session.Running = true
            session.ResetBall()
            startLoop = true
        }

        state = session.State()
        return store.SaveSession(ctx, groupName, session)
    })
    return role, state, startLoop, err
}

// handleMove re-reads the stored state under lock and mutates only the
// sender's paddle speed; the state may have moved on since this connection
// last saw it.
func handleMove(ctx context.Context, groupName, role, key string) {
    err := store.WithSessionLock(ctx, groupName, func() error {
        session, err := store.LoadSession(ctx, groupName)
        if err != nil {
            return err
        }
        session.SetPaddleSpeed(role, game.SpeedForKey(key))
        return store.SaveSession(ctx, groupName, session)
    })
    if err != nil {
        log.Printf("Move in %s dropped: %v", groupName, err)
    }
}

// startTickLoop spawns the session's engine exactly once per process. The
// stored Running flag, checked-and-set under the lock in joinSession, keeps
// other processes from starting a second loop.
func startTickLoop(groupName string) {
    sessionLoops.Lock()
    if _, running := sessionLoops.cancels[groupName]; running {
        sessionLoops.Unlock()
        log.Printf("Tick loop for %s already running", groupName)
        return
    }
    ctx, cancel := context.WithCancel(context.Background())
    sessionLoops.cancels[groupName] = cancel
    sessionLoops.Unlock()

    engine := game.NewEngine(groupName, store, func(update models.GameUpdateMessage) {
        hub.Broadcast(groupName, update)
    })
    go func() {
        engine.Run(ctx)
        stopTickLoop(groupName)
    }()
}

func stopTickLoop(groupName string) {
    sessionLoops.Lock()
    cancel, ok := sessionLoops.cancels[groupName]
    delete(sessionLoops.cancels, groupName)
    sessionLoops.Unlock()
    if ok {
        cancel()
    }
}

// endSession tears the session down after a participant leaves: the stored
// state is removed under lock, the remaining peer is notified, and the final
// score is handed to the persistence collaborators.
func endSession(ctx context.Context, groupName, identity string) {
    var (
        player1, player2 string
        score1, score2   int
        participant      bool
    )

    err := store.WithSessionLock(ctx, groupName, func() error {
        session, err := store.LoadSession(ctx, groupName)
        if errors.Is(err, game.ErrSessionNotFound) {
            return nil // already torn down by the other side
        }
        if err != nil {
            return err
        }
        if _, ok := session.RoleOf(identity); !ok {
            return nil
        }
        participant = true
        player1 = session.IdentityForRole(game.RolePlayer1)
        player2 = session.IdentityForRole(game.RolePlayer2)
        score1, score2 = session.Score1, session.Score2
        return store.DeleteSession(ctx, groupName)
    })
    if err != nil {
        log.Printf("Teardown of %s failed: %v", groupName, err)
        return
    }
    if !participant {
        return
    }

    stopTickLoop(groupName)
    recordAction(groupName, identity, "leave")
    recordAction(groupName, "server", "end")

    reason := fmt.Sprintf("%s disconnected", identity)
    hub.Broadcast(groupName, models.GameEndedMessage{Type: "game_ended", Message: reason})
    log.Printf("Session %s ended: %s", groupName, reason)

    if player1 != "" && player2 != "" {
        if err := matches.SaveMatch(player1, player2, score1, score2); err != nil {
            log.Printf("Failed to persist match %s: %v", groupName, err)
        }
    }
    archiveSession(ctx, groupName, player1, player2, score1, score2, reason)
}

func recordAction(groupName, userID, action string) {
    sessionActionsMutex.Lock()
    defer sessionActionsMutex.Unlock()
    sessionActions[groupName] = append(sessionActions[groupName], models.SessionAction{
        UserID:    userID,
        Action:    action,
        Timestamp: time.Now().UnixMilli(),
    })
}

func archiveSession(ctx context.Context, groupName, player1, player2 string, score1, score2 int, reason string) {
    sessionActionsMutex.Lock()
    actions := sessionActions[groupName]
    delete(sessionActions, groupName)
    sessionActionsMutex.Unlock()

    record := models.SessionRecord{
        SessionID: groupName,
        Player1:   player1,
        Player2:   player2,
        Score1:    score1,
        Score2:    score2,
        Reason:    reason,
        Actions:   actions,
        EndedAt:   time.Now().UTC(),
    }
    if err := replays.Archive(ctx, record); err != nil {
        log.Printf("Failed to archive session %s: %v", groupName, err)
    }
}
