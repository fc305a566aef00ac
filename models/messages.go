package models

// One struct per message type/action crossing a websocket channel. The
// envelopes are field-delimited JSON; anything that fails to decode into its
// variant is logged and dropped at the boundary.

// ClientAction carries only the action tag so the dispatch switch can pick
// the right variant to decode the full payload into.
type ClientAction struct {
    Action string `json:"action"`
}

// Matchmaking channel, client to server.
type JoinQueueMessage struct {
    Action    string `json:"action"`
    AuthToken string `json:"authToken"`
}

// Invite lobby channel, client to server.
type InviteFriendMessage struct {
    Action         string `json:"action"`
    AuthToken      string `json:"authToken"`
    FriendUsername string `json:"friend_username"`
}

// Game session channel, client to server.
type MoveMessage struct {
    Action string `json:"action"`
    Key    string `json:"key"`
}

// Server to client.
type ConnectedMessage struct {
    Type   string `json:"type"`
    UserID string `json:"user_id"`
}

type JoinedQueueMessage struct {
    Type   string `json:"type"`
    UserID string `json:"user_id"`
}

type QueueWaitingMessage struct {
    Type      string `json:"type"`
    QueueSize int64  `json:"queue_size"`
}

type LobbyWaitingMessage struct {
    Type    string `json:"type"`
    Message string `json:"message"`
}

type MatchFoundMessage struct {
    Type          string `json:"type"`
    Player1ID     string `json:"player1_id"`
    Player2ID     string `json:"player2_id"`
    GameGroupName string `json:"game_group_name"`
    YourRole      string `json:"your_role"`
}

type ErrorMessage struct {
    Type    string `json:"type"`
    Message string `json:"message"`
}

type GameInitMessage struct {
    Type       string    `json:"type"`
    PlayerRole string    `json:"player_role"`
    GameState  GameState `json:"game_state"`
}

type GameUpdateMessage struct {
    Type string `json:"type"`
    GameState
}

type GameEndedMessage struct {
    Type    string `json:"type"`
    Message string `json:"message"`
}

// GameState is the per-tick snapshot replicated to both players.
type GameState struct {
    Paddle1X      float64 `json:"paddle1_x"`
    Paddle2X      float64 `json:"paddle2_x"`
    BallX         float64 `json:"ball_x"`
    BallZ         float64 `json:"ball_z"`
    BallVelocityX float64 `json:"ball_velocity_x"`
    BallVelocityZ float64 `json:"ball_velocity_z"`
    Score1        int     `json:"score1"`
    Score2        int     `json:"score2"`
}
