package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRole(t *testing.T) {
	s := NewSession("game_a_b_1")

	role, err := s.AssignRole("a")
	require.NoError(t, err)
	assert.Equal(t, RolePlayer1, role)

	role, err = s.AssignRole("b")
	require.NoError(t, err)
	assert.Equal(t, RolePlayer2, role)

	// Roles are stable for the session's lifetime.
	role, err = s.AssignRole("a")
	require.NoError(t, err)
	assert.Equal(t, RolePlayer1, role)

	_, err = s.AssignRole("c")
	assert.ErrorIs(t, err, ErrSessionFull)
	assert.Equal(t, 2, s.PlayerCount())
}

func TestIdentityForRole(t *testing.T) {
	s := NewSession("game_a_b_1")
	s.AssignRole("a")
	s.AssignRole("b")

	assert.Equal(t, "a", s.IdentityForRole(RolePlayer1))
	assert.Equal(t, "b", s.IdentityForRole(RolePlayer2))
	assert.Equal(t, "", s.IdentityForRole("referee"))
}

func TestSetPaddleSpeed(t *testing.T) {
	s := NewSession("game_a_b_1")

	s.SetPaddleSpeed(RolePlayer1, -PaddleSpeed)
	s.SetPaddleSpeed(RolePlayer2, PaddleSpeed)
	assert.Equal(t, -PaddleSpeed, s.Paddle1Speed)
	assert.Equal(t, PaddleSpeed, s.Paddle2Speed)

	s.SetPaddleSpeed("referee", 1.0)
	assert.Equal(t, -PaddleSpeed, s.Paddle1Speed)
	assert.Equal(t, PaddleSpeed, s.Paddle2Speed)
}

func TestSpeedForKey(t *testing.T) {
	assert.Equal(t, -PaddleSpeed, SpeedForKey("left"))
	assert.Equal(t, -PaddleSpeed, SpeedForKey("ArrowLeft"))
	assert.Equal(t, PaddleSpeed, SpeedForKey("right"))
	assert.Equal(t, PaddleSpeed, SpeedForKey("ArrowRight"))
	assert.Equal(t, 0.0, SpeedForKey("space"))
	assert.Equal(t, 0.0, SpeedForKey(""))
}

func TestResetBallServesBothEnds(t *testing.T) {
	s := NewSession("game_a_b_1")

	towardP1, towardP2 := false, false
	for i := 0; i < 200; i++ {
		s.ResetBall()
		require.InDelta(t, ServeSpeed, math.Hypot(s.BallVX, s.BallVZ), 1e-9)
		if s.BallVZ < 0 {
			towardP1 = true
		} else {
			towardP2 = true
		}
	}
	assert.True(t, towardP1, "serve should sometimes head toward player1")
	assert.True(t, towardP2, "serve should sometimes head toward player2")
}
