package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runningSession() *Session {
	s := NewSession("game_a_b_1")
	s.Players["a"] = RolePlayer1
	s.Players["b"] = RolePlayer2
	s.Running = true
	return s
}

func TestStepPaddleClamp(t *testing.T) {
	s := runningSession()
	s.Paddle1X = -9.7
	s.Paddle1Speed = -PaddleSpeed
	s.Paddle2X = 9.7
	s.Paddle2Speed = PaddleSpeed

	for i := 0; i < 5; i++ {
		Step(s)
	}

	assert.Equal(t, -PaddleClampX, s.Paddle1X)
	assert.Equal(t, PaddleClampX, s.Paddle2X)
}

func TestStepSideWallBounce(t *testing.T) {
	s := runningSession()
	s.BallX = -9.95
	s.BallZ = 0
	s.BallVX = -0.2
	s.BallVZ = 0.01

	Step(s)

	assert.Equal(t, -WallReboundX, s.BallX)
	assert.True(t, s.BallVX > 0, "vx must be forced positive at the left wall")

	s.BallX = 9.95
	s.BallVX = 0.2

	Step(s)

	assert.Equal(t, WallReboundX, s.BallX)
	assert.True(t, s.BallVX < 0, "vx must be forced negative at the right wall")
}

// A ball one tick away from player1's paddle plane must bounce within that
// tick, flip vz positive, and come out at the fixed bounce speed.
func TestStepPaddleCollisionDeterministic(t *testing.T) {
	s := runningSession()
	s.Paddle1X = 0
	s.BallX = 0
	s.BallZ = Paddle1Z + 0.05
	s.BallVX = 0
	s.BallVZ = -ServeSpeed

	Step(s)

	assert.True(t, s.BallVZ > 0, "vz must flip positive after the bounce")
	assert.InDelta(t, BounceSpeed, math.Hypot(s.BallVX, s.BallVZ), 1e-9)
	assert.InDelta(t, Paddle1Z+BallRadius+PaddleRadius, s.BallZ, 1e-9)
}

func TestStepPaddleCollisionSpin(t *testing.T) {
	s := runningSession()
	s.Paddle2X = 1.0
	s.BallX = 2.0 // hits right of the paddle center
	s.BallZ = Paddle2Z - 0.05
	s.BallVX = 0
	s.BallVZ = ServeSpeed

	Step(s)

	assert.True(t, s.BallVZ < 0, "vz must flip negative off player2's paddle")
	assert.True(t, s.BallVX > 0, "offset right of center must spin the ball right")
	assert.InDelta(t, BounceSpeed, math.Hypot(s.BallVX, s.BallVZ), 1e-9)
}

func TestStepPaddleMiss(t *testing.T) {
	s := runningSession()
	s.Paddle1X = 8.0 // nowhere near the crossing point
	s.BallX = 0
	s.BallZ = Paddle1Z + 0.05
	s.BallVX = 0
	s.BallVZ = -ServeSpeed

	Step(s)

	assert.True(t, s.BallVZ < 0, "ball must pass a missed paddle unchanged")
	assert.True(t, s.BallZ < Paddle1Z)
}

func TestStepOverlapFallback(t *testing.T) {
	s := runningSession()
	s.Paddle1X = 0
	s.BallX = 0.5
	// Parked inside the contact band, drifting sideways: the path never
	// crosses the plane, only the overlap test can see it.
	s.BallZ = Paddle1Z + 0.3
	s.BallVX = 0.01
	s.BallVZ = 0

	Step(s)

	assert.InDelta(t, BounceSpeed, math.Hypot(s.BallVX, s.BallVZ), 1e-9)
	assert.InDelta(t, Paddle1Z+BallRadius+PaddleRadius, s.BallZ, 1e-9)
}

func TestStepScoringPlayer1(t *testing.T) {
	s := runningSession()
	s.BallX = 0
	s.BallZ = ScoreBoundary - 0.05
	s.BallVX = 0
	s.BallVZ = ServeSpeed

	Step(s)

	assert.Equal(t, 1, s.Score1)
	assert.Equal(t, 0, s.Score2)
	assert.Equal(t, 0.0, s.BallX)
	assert.Equal(t, 0.0, s.BallZ)
	assertServe(t, s)
}

func TestStepScoringPlayer2(t *testing.T) {
	s := runningSession()
	s.BallX = 0
	s.BallZ = -ScoreBoundary + 0.05
	s.BallVX = 0
	s.BallVZ = -ServeSpeed
	s.Paddle1X = 9.0 // out of the way

	Step(s)

	assert.Equal(t, 0, s.Score1)
	assert.Equal(t, 1, s.Score2)
	assertServe(t, s)
}

// assertServe checks a freshly served ball: fixed magnitude, deflection within
// [-pi/4, pi/4] off the straight line toward either end.
func assertServe(t *testing.T, s *Session) {
	t.Helper()
	require.InDelta(t, ServeSpeed, math.Hypot(s.BallVX, s.BallVZ), 1e-9)
	maxDeflection := ServeSpeed * math.Sin(math.Pi/4)
	assert.LessOrEqual(t, math.Abs(s.BallVX), maxDeflection+1e-9)
	assert.GreaterOrEqual(t, math.Abs(s.BallVZ), ServeSpeed*math.Cos(math.Pi/4)-1e-9)
}

func TestScoresAreMonotonic(t *testing.T) {
	s := runningSession()
	s.ResetBall()
	for i := 0; i < 500; i++ {
		prev1, prev2 := s.Score1, s.Score2
		Step(s)
		assert.GreaterOrEqual(t, s.Score1, prev1)
		assert.GreaterOrEqual(t, s.Score2, prev2)
	}
}
