package handlers

import (
    "encoding/json"
    "log"
    "sync"

    "github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection and the player it belongs to.
type Connection struct {
    ws     *websocket.Conn
    send   chan []byte
    userID string
    closed bool // guarded by hub.mu
}

// Hub delivers messages to every connection registered under a named group
// (queue-wide or session-specific) or to one connection by identity. Ordering
// across receivers within one broadcast is not guaranteed.
type Hub struct {
    mu     sync.Mutex
    groups map[string]map[*Connection]bool
    users  map[string]*Connection // group-scoped identity -> connection
}

var hub = &Hub{
    groups: make(map[string]map[*Connection]bool),
    users:  make(map[string]*Connection),
}

func userKey(group, identity string) string {
    return group + ":" + identity
}

// Join registers the connection under group and its identity within it.
func (h *Hub) Join(group string, c *Connection) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if h.groups[group] == nil {
        h.groups[group] = make(map[*Connection]bool)
    }
    h.groups[group][c] = true
    h.users[userKey(group, c.userID)] = c
}

// Leave drops the connection from group. The send channel closes when the
// connection leaves its last group.
func (h *Hub) Leave(group string, c *Connection) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if members, ok := h.groups[group]; ok {
        delete(members, c)
        if len(members) == 0 {
            delete(h.groups, group)
        }
    }
    if h.users[userKey(group, c.userID)] == c {
        delete(h.users, userKey(group, c.userID))
    }
    if !h.registeredLocked(c) {
        h.closeSendLocked(c)
    }
}

func (h *Hub) registeredLocked(c *Connection) bool {
    for _, members := range h.groups {
        if members[c] {
            return true
        }
    }
    return false
}

func (h *Hub) closeSendLocked(c *Connection) {
    if !c.closed {
        c.closed = true
        close(c.send)
    }
}

// Broadcast sends v to every connection in group.
func (h *Hub) Broadcast(group string, v interface{}) {
    message, err := json.Marshal(v)
    if err != nil {
        log.Printf("Error marshalling broadcast for %s: %v", group, err)
        return
    }

    h.mu.Lock()
    defer h.mu.Unlock()
    for c := range h.groups[group] {
        if c.closed {
            delete(h.groups[group], c)
            continue
        }
        select {
        case c.send <- message:
        default:
            // Slow consumer: drop it rather than stall the group.
            delete(h.groups[group], c)
            delete(h.users, userKey(group, c.userID))
            h.closeSendLocked(c)
        }
    }
}

// Rebind renames the identity a connection is registered under within group.
func (h *Hub) Rebind(group string, c *Connection, identity string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if h.users[userKey(group, c.userID)] == c {
        delete(h.users, userKey(group, c.userID))
    }
    c.userID = identity
    h.users[userKey(group, identity)] = c
}

// UserConn looks up the connection registered for identity within group.
func (h *Hub) UserConn(group, identity string) (*Connection, bool) {
    h.mu.Lock()
    defer h.mu.Unlock()
    c, ok := h.users[userKey(group, identity)]
    return c, ok
}

// SendTo delivers v to a single connection.
func (h *Hub) SendTo(c *Connection, v interface{}) {
    message, err := json.Marshal(v)
    if err != nil {
        log.Printf("Error marshalling message for %s: %v", c.userID, err)
        return
    }
    h.mu.Lock()
    defer h.mu.Unlock()
    if c.closed {
        return
    }
    select {
    case c.send <- message:
    default:
        log.Printf("Dropping message for %s: send buffer full", c.userID)
    }
}
