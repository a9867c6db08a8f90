package chatlogRepo

import (
	"context"
	"time"

	"merchify/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordTurn appends one turn to the session's audit log. A turn whose
// user text matches the session's previous turn is flagged as a duplicate
// so double-submitting clients can be spotted later.
func (r *mongoChatLogRepo) RecordTurn(ctx context.Context, sessionID, userText string, result *models.TurnResult) error {
	record := models.TurnRecord{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		UserText:   userText,
		Intent:     string(result.Intent),
		Response:   result.Response,
		ProductID:  result.Decision.Primary,
		Confidence: string(result.Decision.Confidence),
		CreatedAt:  time.Now(),
	}

	var last models.TurnRecord
	err := r.coll.FindOne(ctx, bson.M{"sessionId": sessionID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&last)
	if err == nil && last.UserText == userText {
		record.Duplicate = true
	} else if err != nil && err != mongo.ErrNoDocuments {
		return err
	}

	_, err = r.coll.InsertOne(ctx, record)
	return err
}

// BySession returns a session's turns in chronological order.
func (r *mongoChatLogRepo) BySession(ctx context.Context, sessionID string) ([]models.TurnRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.TurnRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DuplicateCount counts the session's flagged duplicate turns.
func (r *mongoChatLogRepo) DuplicateCount(ctx context.Context, sessionID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"sessionId": sessionID, "duplicate": true})
}

// PurgeSession removes a session's audit log.
func (r *mongoChatLogRepo) PurgeSession(ctx context.Context, sessionID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}
