package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/doSwayamCode/chitrakaar/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MONGO_DATABASE        = "chitrakaar"
	DRAWINGS_COLLECTION   = "drawings"
	SCORES_COLLECTION     = "guest_scores"
	MONGO_CONNECT_TIMEOUT = 10 * time.Second
)

// MongoRepo stores the gallery and guest scores in MongoDB. Old documents
// expire through TTL indexes.
type MongoRepo struct {
	client   *mongo.Client
	drawings *mongo.Collection
	scores   *mongo.Collection
	now      func() time.Time
}

func NewMongoRepo(ctx context.Context, uri string) (*MongoRepo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, MONGO_CONNECT_TIMEOUT)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetMaxPoolSize(20))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	db := client.Database(MONGO_DATABASE)
	repo := &MongoRepo{
		client:   client,
		drawings: db.Collection(DRAWINGS_COLLECTION),
		scores:   db.Collection(SCORES_COLLECTION),
		now:      time.Now,
	}
	if err := repo.createIndexes(connectCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return repo, nil
}

func (m *MongoRepo) createIndexes(ctx context.Context) error {
	drawingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(GALLERY_RETENTION.Seconds())),
		},
	}
	if _, err := m.drawings.Indexes().CreateMany(ctx, drawingIndexes); err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	scoreIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(SCORES_RETENTION.Seconds())),
		},
		{
			Keys: bson.D{{Key: "score", Value: -1}},
		},
	}
	if _, err := m.scores.Indexes().CreateMany(ctx, scoreIndexes); err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

func (m *MongoRepo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoRepo) SaveDrawing(ctx context.Context, drawing domain.Drawing) error {
	drawing.Strokes = capStrokes(drawing.Strokes)
	if drawing.CreatedAt.IsZero() {
		drawing.CreatedAt = m.now()
	}
	if _, err := m.drawings.InsertOne(ctx, drawing); err != nil {
		return wrapErr(err)
	}
	return nil
}

func (m *MongoRepo) RecentDrawings(ctx context.Context, limit int) ([]domain.Drawing, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 0})

	// TTL expiry runs in the background, so filter on the window as well.
	recent := bson.M{"createdAt": bson.M{"$gte": m.now().Add(-GALLERY_RETENTION)}}
	cursor, err := m.drawings.Find(ctx, recent, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	drawings := make([]domain.Drawing, 0, limit)
	if err := cursor.All(ctx, &drawings); err != nil {
		return nil, wrapErr(err)
	}
	return drawings, nil
}

func (m *MongoRepo) SaveGuestScore(ctx context.Context, entry domain.ScoreEntry) error {
	entry.Score = clampScore(entry.Score)
	if entry.Mode == "" {
		entry.Mode = "classic"
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now()
	}
	if _, err := m.scores.InsertOne(ctx, entry); err != nil {
		return wrapErr(err)
	}
	return nil
}

func (m *MongoRepo) TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}, {Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 0})

	recent := bson.M{"createdAt": bson.M{"$gte": m.now().Add(-SCORES_RETENTION)}}
	cursor, err := m.scores.Find(ctx, recent, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	entries := make([]domain.ScoreEntry, 0, limit)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, wrapErr(err)
	}
	return entries, nil
}
