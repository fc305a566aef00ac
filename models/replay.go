package models

import "time"

type SessionAction struct {
    UserID    string `bson:"userId"`
    Action    string `bson:"action"`
    Timestamp int64  `bson:"timestamp"`
}

// SessionRecord is the archived trace of one finished session.
type SessionRecord struct {
    SessionID string          `bson:"sessionId"`
    Player1   string          `bson:"player1"`
    Player2   string          `bson:"player2"`
    Score1    int             `bson:"score1"`
    Score2    int             `bson:"score2"`
    Reason    string          `bson:"reason"`
    Actions   []SessionAction `bson:"actions"`
    EndedAt   time.Time       `bson:"endedAt"`
}
