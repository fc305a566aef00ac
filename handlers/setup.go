package handlers

import (
    "github.com/pongarena/pongarena-backend/repository"
)

// Package-level collaborators, wired once from main (or a test harness)
// before the router starts serving.
var (
    store   *repository.Store
    matches MatchRecorder
    players PlayerDirectory
    replays ReplayArchiver
)

func Setup(s *repository.Store, m MatchRecorder, p PlayerDirectory, r ReplayArchiver) {
    store = s
    matches = m
    players = p
    replays = r
}
