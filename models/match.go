package models

import "time"

type Match struct {
    ID        int64     `json:"id"`
    Player1   string    `json:"player1"`
    Player2   string    `json:"player2"`
    Score1    int       `json:"score1"`
    Score2    int       `json:"score2"`
    CreatedAt time.Time `json:"created_at"`
}
