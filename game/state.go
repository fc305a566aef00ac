package game

import (
	"errors"
	"math"
	"math/rand"

	"github.com/pongarena/pongarena-backend/models"
)

const (
	RolePlayer1 = "player1"
	RolePlayer2 = "player2"
)

// Field geometry and tuning. The ball serves at ServeSpeed and settles to
// BounceSpeed after the first paddle contact.
const (
	FieldHalfWidth   = 10.0
	ScoreBoundary    = 16.0
	PaddleHalfLength = 1.7
	PaddleRadius     = 0.2
	BallRadius       = 0.4
	PaddleClampX     = 9.8
	WallReboundX     = 9.9
	ServeSpeed       = 0.3
	BounceSpeed      = 0.2
	PaddleSpeed      = 0.15
	SpinFactor       = 0.05
	MinVelocityX     = 0.02
	TickRate         = 60
)

// Paddle planes: player1 defends the z=-16 end, player2 the z=+16 end.
const (
	Paddle1Z = -15.0
	Paddle2Z = 15.0
)

var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrSessionFull     = errors.New("game session already has two players")
)

// Session is the authoritative state of one match. It lives as a JSON blob in
// the shared state store and is only mutated under the session's lock.
type Session struct {
	ID           string            `json:"session_id"`
	Players      map[string]string `json:"players"` // identity -> role
	BallX        float64           `json:"ball_x"`
	BallZ        float64           `json:"ball_z"`
	BallVX       float64           `json:"ball_vx"`
	BallVZ       float64           `json:"ball_vz"`
	Paddle1X     float64           `json:"paddle1_x"`
	Paddle2X     float64           `json:"paddle2_x"`
	Paddle1Speed float64           `json:"paddle1_speed"`
	Paddle2Speed float64           `json:"paddle2_speed"`
	Score1       int               `json:"score1"`
	Score2       int               `json:"score2"`
	Running      bool              `json:"running"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		Players: make(map[string]string),
	}
}

func (s *Session) PlayerCount() int {
	return len(s.Players)
}

func (s *Session) RoleOf(identity string) (string, bool) {
	role, ok := s.Players[identity]
	return role, ok
}

func (s *Session) IdentityForRole(role string) string {
	for identity, r := range s.Players {
		if r == role {
			return identity
		}
	}
	return ""
}

// AssignRole binds identity to the next free role. A reconnecting identity
// keeps its existing role; a third identity is rejected.
func (s *Session) AssignRole(identity string) (string, error) {
	if role, ok := s.Players[identity]; ok {
		return role, nil
	}
	switch len(s.Players) {
	case 0:
		s.Players[identity] = RolePlayer1
		return RolePlayer1, nil
	case 1:
		s.Players[identity] = RolePlayer2
		return RolePlayer2, nil
	default:
		return "", ErrSessionFull
	}
}

func (s *Session) SetPaddleSpeed(role string, speed float64) {
	if role == RolePlayer1 {
		s.Paddle1Speed = speed
	} else if role == RolePlayer2 {
		s.Paddle2Speed = speed
	}
}

// ResetBall recenters the ball and serves it toward a random end, deflected
// by a uniform angle in [-pi/4, pi/4] off the straight line.
func (s *Session) ResetBall() {
	angle := (rand.Float64()*2 - 1) * math.Pi / 4
	direction := 1.0
	if rand.Intn(2) == 0 {
		direction = -1.0
	}
	s.BallX = 0
	s.BallZ = 0
	s.BallVX = ServeSpeed * math.Sin(angle)
	s.BallVZ = direction * ServeSpeed * math.Cos(angle)
}

func (s *Session) State() models.GameState {
	return models.GameState{
		Paddle1X:      s.Paddle1X,
		Paddle2X:      s.Paddle2X,
		BallX:         s.BallX,
		BallZ:         s.BallZ,
		BallVelocityX: s.BallVX,
		BallVelocityZ: s.BallVZ,
		Score1:        s.Score1,
		Score2:        s.Score2,
	}
}

// SpeedForKey maps a directional key token to a signed lateral paddle speed.
// Unknown keys stop the paddle.
func SpeedForKey(key string) float64 {
	switch key {
	case "left", "ArrowLeft":
		return -PaddleSpeed
	case "right", "ArrowRight":
		return PaddleSpeed
	default:
		return 0
	}
}
