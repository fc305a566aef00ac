package main

import (
    "log"
    "net/http"

    "github.com/joho/godotenv"

    "github.com/pongarena/pongarena-backend/config"
    "github.com/pongarena/pongarena-backend/handlers"
    "github.com/pongarena/pongarena-backend/repository"
)

func main() {
    if err := godotenv.Load(); err != nil {
        log.Println("No .env file loaded:", err)
    }

    cfg := config.LoadConfig()

    db := repository.ConnectToPostgreSQL(cfg)
    mongoClient := repository.ConnectMongoDB(cfg)
    redisClient := repository.ConnectRedis(cfg)

    matchStore := repository.NewMatchStore(db)
    handlers.Setup(
        repository.NewStore(redisClient),
        matchStore,
        matchStore,
        repository.NewReplayArchive(mongoClient),
    )

    r := handlers.NewRouter()

    log.Println("Server running on", cfg.ListenAddr)
    log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}
