package handlers

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"

    "github.com/pongarena/pongarena-backend/models"
)

const lobbyGroup = "lobby"

// InviteWsHandler runs the invite lobby: two named players get paired on
// request without going through the FIFO queue. Invites to players who are
// not attached yet wait in the store with a bounded expiry.
func InviteWsHandler(w http.ResponseWriter, r *http.Request) {
    c, err := upgrade(w, r)
    if err != nil {
        return
    }
    go c.writePump()

    ctx := context.Background()
    if err := store.WaitReady(ctx); err != nil {
        log.Printf("Lobby attach for %s failed: %v", c.userID, err)
        hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Invites are unavailable, try again later."})
        c.ws.Close()
        close(c.send)
        return
    }

    hub.Join(lobbyGroup, c)
    hub.SendTo(c, models.ConnectedMessage{Type: "connected", UserID: c.userID})
    log.Printf("Player %s connected to invite lobby", c.userID)

    defer func() {
        hub.Leave(lobbyGroup, c)
        c.ws.Close()
        log.Printf("Player %s disconnected from invite lobby", c.userID)
    }()

    // A pending, non-expired invite addressed to this player completes now.
    completePendingInvite(ctx, c)

    c.readLoop(func(message []byte) {
        var action models.ClientAction
        if err := json.Unmarshal(message, &action); err != nil {
            log.Printf("Invalid message from %s: %v", c.userID, err)
            return
        }

        switch action.Action {
        case "invite_friend":
            var msg models.InviteFriendMessage
            if err := json.Unmarshal(message, &msg); err != nil {
                log.Printf("Invalid invite_friend from %s: %v", c.userID, err)
                return
            }
            handleInviteFriend(ctx, c, msg)
        default:
            log.Printf("Unhandled lobby action from %s: %s", c.userID, action.Action)
        }
    })
}

func handleInviteFriend(ctx context.Context, c *Connection, msg models.InviteFriendMessage) {
    claims, err := ValidateToken(msg.AuthToken)
    if err != nil || claims.Username == "" {
        hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Invalid identity."})
        return
    }
    if claims.Username != c.userID {
        // The player attached anonymously; the invite credential names them.
        hub.Rebind(lobbyGroup, c, claims.Username)
    }

    known, err := players.PlayerExists(msg.FriendUsername)
    if err != nil {
        log.Printf("Player lookup for %s failed: %v", msg.FriendUsername, err)
        hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Invites are unavailable, try again later."})
        return
    }
    if !known {
        hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Target not found."})
        return
    }

    if invitee, ok := hub.UserConn(lobbyGroup, msg.FriendUsername); ok {
        pairDirectly(c, invitee)
        return
    }

    if err := store.SetPendingInvite(ctx, msg.FriendUsername, c.userID); err != nil {
        log.Printf("Failed to store invite from %s: %v", c.userID, err)
        hub.SendTo(c, models.ErrorMessage{Type: "error", Message: "Invites are unavailable, try again later."})
        return
    }
    hub.SendTo(c, models.LobbyWaitingMessage{
        Type:    "waiting",
        Message: fmt.Sprintf("Waiting for %s to come online.", msg.FriendUsername),
    })
}

func completePendingInvite(ctx context.Context, c *Connection) {
    inviter, ok, err := store.TakePendingInvite(ctx, c.userID)
    if err != nil {
        log.Printf("Pending invite lookup for %s failed: %v", c.userID, err)
        return
    }
    if !ok {
        return
    }
    inviterConn, reachable := hub.UserConn(lobbyGroup, inviter)
    if !reachable {
        log.Printf("Inviter %s left before %s arrived", inviter, c.userID)
        return
    }
    pairDirectly(inviterConn, c)
}

// pairDirectly creates a session for the pair and notifies both point to
// point; the inviter is always player1.
func pairDirectly(inviter, invitee *Connection) {
    groupName := newSessionID(inviter.userID, invitee.userID)
    log.Printf("Invite match created: %s vs %s (%s)", inviter.userID, invitee.userID, groupName)

    for conn, role := range map[*Connection]string{inviter: "player1", invitee: "player2"} {
        hub.SendTo(conn, models.MatchFoundMessage{
            Type:          "match_found",
            Player1ID:     inviter.userID,
            Player2ID:     invitee.userID,
            GameGroupName: groupName,
            YourRole:      role,
        })
    }
}
