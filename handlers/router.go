package handlers

import (
    "github.com/gorilla/mux"
    "github.com/pongarena/pongarena-backend/middleware"
)

func NewRouter() *mux.Router {
    r := mux.NewRouter()

    // Realtime channels
    r.HandleFunc("/ws/matchmaking", MatchmakingWsHandler)
    r.HandleFunc("/ws/game/{game_group_name}", GameWsHandler)
    r.HandleFunc("/ws/lobby", InviteWsHandler)

    // Secured routes
    secured := r.PathPrefix("/api").Subrouter()
    secured.Use(middleware.JWTValidationMiddleware)
    secured.HandleFunc("/matches/{username}", FetchMatchHistory).Methods("GET")
    return r
}
