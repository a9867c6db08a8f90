package chatlogRepo

import (
	"context"

	"merchify/config"
	"merchify/database"
	"merchify/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type ChatLogRepository interface {
	RecordTurn(ctx context.Context, sessionID, userText string, result *models.TurnResult) error
	BySession(ctx context.Context, sessionID string) ([]models.TurnRecord, error)
	DuplicateCount(ctx context.Context, sessionID string) (int64, error)
	PurgeSession(ctx context.Context, sessionID string) error
}

type mongoChatLogRepo struct {
	coll *mongo.Collection
}

// NewMongoChatLogRepo returns a new ChatLogRepository instance using MongoDB.
func NewMongoChatLogRepo() ChatLogRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoChatLogRepo{
		coll: db.Collection("chat_turns"),
	}
}
