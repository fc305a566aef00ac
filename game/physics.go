package game

import "math"

// Step advances the simulation by one tick: paddles, ball, wall rebounds,
// paddle bounces, scoring. Callers must hold the session's lock.
func Step(s *Session) {
	s.Paddle1X = clamp(s.Paddle1X+s.Paddle1Speed, -PaddleClampX, PaddleClampX)
	s.Paddle2X = clamp(s.Paddle2X+s.Paddle2Speed, -PaddleClampX, PaddleClampX)

	prevX, prevZ := s.BallX, s.BallZ
	s.BallX += s.BallVX
	s.BallZ += s.BallVZ

	if s.BallX <= -FieldHalfWidth {
		s.BallX = -WallReboundX
		s.BallVX = math.Abs(s.BallVX)
	} else if s.BallX >= FieldHalfWidth {
		s.BallX = WallReboundX
		s.BallVX = -math.Abs(s.BallVX)
	}

	resolvePaddle(s, Paddle1Z, s.Paddle1X, prevX, prevZ)
	resolvePaddle(s, Paddle2Z, s.Paddle2X, prevX, prevZ)

	if s.BallZ < -ScoreBoundary {
		s.Score2++
		s.ResetBall()
	} else if s.BallZ > ScoreBoundary {
		s.Score1++
		s.ResetBall()
	}
}

// resolvePaddle prefers the continuous crossing test over the ball's path this
// tick; the endpoint overlap test only fires when no crossing in [0,1] was
// found, so a bounce is never resolved twice.
func resolvePaddle(s *Session, paddleZ, paddleX, prevX, prevZ float64) {
	hit := false
	hitX := s.BallX
	crossed := false

	if dz := s.BallZ - prevZ; dz != 0 {
		t := (paddleZ - prevZ) / dz
		if t >= 0 && t <= 1 {
			crossed = true
			x := prevX + t*(s.BallX-prevX)
			if math.Abs(x-paddleX) <= PaddleHalfLength+BallRadius {
				hit = true
				hitX = x
			}
		}
	}

	if !hit && !crossed {
		// Resting or low-speed contact the path test cannot see.
		if math.Abs(s.BallX-paddleX) <= PaddleHalfLength &&
			math.Abs(s.BallZ-paddleZ) <= BallRadius+PaddleRadius {
			hit = true
			hitX = s.BallX
		}
	}

	if !hit {
		return
	}

	surface := BallRadius + PaddleRadius
	if paddleZ < 0 {
		s.BallZ = paddleZ + surface
	} else {
		s.BallZ = paddleZ - surface
	}
	s.BallX = hitX
	s.BallVZ = -s.BallVZ

	// Spin away from the paddle center, then keep the speed fixed.
	s.BallVX += (hitX - paddleX) * SpinFactor
	if math.Abs(s.BallVX) < MinVelocityX {
		if s.BallVX < 0 {
			s.BallVX = -MinVelocityX
		} else {
			s.BallVX = MinVelocityX
		}
	}
	magnitude := math.Hypot(s.BallVX, s.BallVZ)
	s.BallVX = s.BallVX / magnitude * BounceSpeed
	s.BallVZ = s.BallVZ / magnitude * BounceSpeed
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
