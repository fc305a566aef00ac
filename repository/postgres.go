package repository

import (
    "database/sql"
    "errors"
    "fmt"
    "log"
    "time"

    _ "github.com/lib/pq"

    "github.com/pongarena/pongarena-backend/config"
    "github.com/pongarena/pongarena-backend/models"
)

func ConnectToPostgreSQL(cfg *config.Config) *sql.DB {
    connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
        cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

    db, err := sql.Open("postgres", connStr)
    if err != nil {
        log.Fatalln(err)
    }

    if err := db.Ping(); err != nil {
        db.Close()
        log.Fatal(err)
    }
    PostgreSQLDB = db

    log.Println("Successfully connected to PostgreSQL")
    return db
}

var (
    PostgreSQLDB *sql.DB
)

// MatchStore persists finished matches and answers "is this a known player"
// for direct invites. Accounts themselves are owned by the external identity
// service; this only reads its users table.
type MatchStore struct {
    db *sql.DB
}

func NewMatchStore(db *sql.DB) *MatchStore {
    return &MatchStore{db: db}
}

func (m *MatchStore) SaveMatch(player1, player2 string, score1, score2 int) error {
    _, err := m.db.Exec("INSERT INTO matches (player1, player2, score1, score2, created_at) VALUES ($1, $2, $3, $4, $5)",
        player1, player2, score1, score2, time.Now().UTC())
    return err
}

func (m *MatchStore) PlayerExists(username string) (bool, error) {
    var one int
    err := m.db.QueryRow("SELECT 1 FROM users WHERE username = $1", username).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

func (m *MatchStore) MatchesFor(username string) ([]models.Match, error) {
    rows, err := m.db.Query(
        "SELECT id, player1, player2, score1, score2, created_at FROM matches WHERE player1 = $1 OR player2 = $1 ORDER BY created_at DESC",
        username)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var matches []models.Match
    for rows.Next() {
        var match models.Match
        if err := rows.Scan(&match.ID, &match.Player1, &match.Player2, &match.Score1, &match.Score2, &match.CreatedAt); err != nil {
            return nil, err
        }
        matches = append(matches, match)
    }
    return matches, rows.Err()
}
