package repository

import (
    "log"
    "strconv"

    "github.com/redis/go-redis/v9"

    "github.com/pongarena/pongarena-backend/config"
)

func ConnectRedis(cfg *config.Config) *redis.Client {
    db, err := strconv.Atoi(cfg.RedisDB)
    if err != nil {
        log.Printf("Invalid REDIS_DB %q, using 0", cfg.RedisDB)
        db = 0
    }

    RedisClient = redis.NewClient(&redis.Options{
        Addr: cfg.RedisAddr,
        DB:   db,
    })
    return RedisClient
}

var (
    RedisClient *redis.Client
)
