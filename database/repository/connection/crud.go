// File: database/repository/connection/crud.go
package connectionRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ledgerly/models"
)

// Upsert stores the connection for its system, replacing any previous one.
// One connection per system: the business runs a single calendar account and
// a single CRM account.
func (r *mongoConnectionRepo) Upsert(ctx context.Context, conn *models.Connection) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if conn.ID == "" {
		conn.ID = uuid.New().String()
	}
	if conn.ConnectedAt.IsZero() {
		conn.ConnectedAt = time.Now().UTC()
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"system": conn.System}, conn, opts); err != nil {
		return fmt.Errorf("failed to upsert %s connection: %w", conn.System, err)
	}
	return nil
}

func (r *mongoConnectionRepo) GetBySystem(ctx context.Context, system string) (*models.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conn models.Connection
	err := r.coll.FindOne(ctx, bson.M{"system": system}).Decode(&conn)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s connection: %w", system, err)
	}
	return &conn, nil
}

func (r *mongoConnectionRepo) Deactivate(ctx context.Context, system string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"system": system}, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return fmt.Errorf("failed to deactivate %s connection: %w", system, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
