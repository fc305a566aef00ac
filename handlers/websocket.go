package handlers

import (
    "log"
    "net/http"

    "github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    CheckOrigin:     func(r *http.Request) bool { return true },
}

// upgrade turns the request into a Connection bound to the identity resolved
// from the optional token query parameter.
func upgrade(w http.ResponseWriter, r *http.Request) (*Connection, error) {
    ws, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        log.Println("Upgrade error:", err)
        return nil, err
    }

    identity := resolveIdentity(r.URL.Query().Get("token"))
    return &Connection{send: make(chan []byte, 256), ws: ws, userID: identity}, nil
}

// readLoop feeds inbound frames to onMessage until the peer goes away.
func (c *Connection) readLoop(onMessage func([]byte)) {
    for {
        _, message, err := c.ws.ReadMessage()
        if err != nil {
            log.Printf("Connection for %s closed: %v", c.userID, err)
            return
        }
        onMessage(message)
    }
}

func (c *Connection) writePump() {
    defer func() {
        c.ws.Close()
    }()

    for message := range c.send {
        if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
            log.Printf("error writing message: %v", err)
            break
        }
    }
}
