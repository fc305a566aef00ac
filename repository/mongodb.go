package repository

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pongarena/pongarena-backend/config"
	"github.com/pongarena/pongarena-backend/models"
)

func ConnectMongoDB(cfg *config.Config) *mongo.Client {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
    if err != nil {
        log.Fatal(err)
    }

    if err := client.Ping(ctx, nil); err != nil {
        log.Fatal(err)
    }
    MongoDBClient = client

    log.Println("Successfully connected to MongoDB")
    return client
}

var (
    MongoDBClient *mongo.Client
)

// ReplayArchive stores the action trace of finished sessions.
type ReplayArchive struct {
    client *mongo.Client
}

func NewReplayArchive(client *mongo.Client) *ReplayArchive {
    return &ReplayArchive{client: client}
}

func (a *ReplayArchive) Archive(ctx context.Context, record models.SessionRecord) error {
    collection := a.client.Database("pongarena").Collection("replays")
    _, err := collection.InsertOne(ctx, record)
    return err
}
