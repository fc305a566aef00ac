package handlers

import (
    "context"
    "fmt"
    "os"

    "github.com/golang-jwt/jwt/v4"
    "github.com/google/uuid"

    "github.com/pongarena/pongarena-backend/models"
)

// MatchRecorder is the external persistence collaborator: it receives the two
// player identities and final scores of a finished match.
type MatchRecorder interface {
    SaveMatch(player1, player2 string, score1, score2 int) error
    MatchesFor(username string) ([]models.Match, error)
}

// PlayerDirectory answers whether a username names a known player.
type PlayerDirectory interface {
    PlayerExists(username string) (bool, error)
}

// ReplayArchiver receives the action trace of a finished session.
type ReplayArchiver interface {
    Archive(ctx context.Context, record models.SessionRecord) error
}

// ValidateToken resolves an opaque credential to stable player claims.
func ValidateToken(tokenStr string) (*models.CustomClaims, error) {
    secretKey := os.Getenv("JWT_SECRET")
    if secretKey == "" {
        return nil, fmt.Errorf("JWT_SECRET not set")
    }

    claims := &models.CustomClaims{}
    token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
        if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
        }

        return []byte(secretKey), nil
    })

    if err != nil {
        return nil, err
    }

    if !token.Valid {
        return nil, fmt.Errorf("invalid token")
    }

    return claims, nil
}

// resolveIdentity turns an optional credential into a player identity:
// the validated username, or a generated anonymous tag.
func resolveIdentity(tokenStr string) string {
    if tokenStr != "" {
        if claims, err := ValidateToken(tokenStr); err == nil && claims.Username != "" {
            return claims.Username
        }
    }
    return "anon_" + uuid.New().String()
}
