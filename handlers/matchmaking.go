package handlers

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "time"

    "github.com/pongarena/pongarena-backend/models"
)

const matchmakingGroup = "matchmaking"

// MatchmakingWsHandler runs the matchmaking channel: players join a FIFO
// queue and get paired two at a time into a fresh game session.
func MatchmakingWsHandler(w http.ResponseWriter, r *http.Request) {
    c, err := upgrade(w, r)
    if err != nil {
        return
    }
    go c.writePump()

    ctx := context.Background()
    if err := store.WaitReady(ctx); err != nil {
        log.Printf("Matchmaking attach for %s failed: %v", c.userID, err)
        hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Matchmaking is unavailable, try again later."})
        c.ws.Close()
        close(c.send)
        return
    }

    hub.Join(matchmakingGroup, c)
    hub.SendTo(c, models.ConnectedMessage{Type: "connected", UserID: c.userID})
    log.Printf("Player %s connected to matchmaking", c.userID)

    defer func() {
        if err := store.RemoveFromQueue(ctx, c.userID); err != nil {
            log.Printf("Failed to remove %s from queue: %v", c.userID, err)
        }
        hub.Leave(matchmakingGroup, c)
        c.ws.Close()
        log.Printf("Player %s disconnected from matchmaking", c.userID)
    }()

    c.readLoop(func(message []byte) {
        var action models.ClientAction
        if err := json.Unmarshal(message, &action); err != nil {
            log.Printf("Invalid message from %s: %v", c.userID, err)
            return
        }

        switch action.Action {
        case "join_queue":
            var msg models.JoinQueueMessage
            if err := json.Unmarshal(message, &msg); err != nil {
                log.Printf("Invalid join_queue from %s: %v", c.userID, err)
                return
            }
            handleJoinQueue(ctx, c, msg)
        default:
            log.Printf("Unhandled matchmaking action from %s: %s", c.userID, action.Action)
        }
    })
}

func handleJoinQueue(ctx context.Context, c *Connection, msg models.JoinQueueMessage) {
    if msg.AuthToken != "" {
        if _, err := ValidateToken(msg.AuthToken); err != nil {
            log.Printf("Rejecting join_queue from %s: %v", c.userID, err)
            hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Invalid identity."})
            return
        }
    }

    queued, err := store.QueueContains(ctx, c.userID)
    if err != nil {
        hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Matchmaking is unavailable, try again later."})
        return
    }
    if queued {
        log.Printf("Player %s already in queue", c.userID)
        return
    }

    if err := store.PushQueue(ctx, c.userID); err != nil {
        hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Matchmaking is unavailable, try again later."})
        return
    }
    hub.SendTo(c, models.JoinedQueueMessage{Type: "joined_queue", UserID: c.userID})

    size, err := store.QueueLen(ctx)
    if err != nil {
        log.Printf("Queue length check failed: %v", err)
        return
    }
    log.Printf("Current queue state - Size: %d, User: %s", size, c.userID)

    if size < 2 {
        hub.SendTo(c, models.QueueWaitingMessage{Type: "waiting", QueueSize: size})
        return
    }

    player1, player2, ok, err := store.PopPair(ctx)
    if err != nil {
        log.Printf("Queue pop failed: %v", err)
        return
    }
    if !ok {
        // Another handler paired them first.
        return
    }

    groupName := newSessionID(player1, player2)
    log.Printf("Match created: %s vs %s (%s)", player1, player2, groupName)
    sendMatchFound(player1, player2, groupName)
}

// sendMatchFound tells each matched player the pairing and their own role.
func sendMatchFound(player1, player2, groupName string) {
    for identity, role := range map[string]string{player1: "player1", player2: "player2"} {
        if conn, ok := hub.UserConn(matchmakingGroup, identity); ok {
            hub.SendTo(conn, models.MatchFoundMessage{
                Type:          "match_found",
                Player1ID:     player1,
                Player2ID:     player2,
                GameGroupName: groupName,
                YourRole:      role,
            })
        } else {
            log.Printf("Matched player %s has no matchmaking connection here", identity)
        }
    }
}

// newSessionID stays unique across repeat matchups of the same two players.
func newSessionID(player1, player2 string) string {
    return fmt.Sprintf("game_%s_%s_%d", player1, player2, time.Now().UnixMilli())
}
