package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fms/internal/domain/models"
)

// Repository defines the interface for pasture report storage.
type Repository interface {
	SavePastureReport(ctx context.Context, report models.PastureReport) error
	FindPastureReport(ctx context.Context, date time.Time) (models.PastureReport, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "pasture_reports",
	}

	_, err = repo.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pasture report index: %w", err)
	}

	return repo, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SavePastureReport stores the report for its simulated date, replacing any
// earlier report for the same date (a reset followed by replaying days).
func (r *MongoDBRepository) SavePastureReport(ctx context.Context, report models.PastureReport) error {
	_, err := r.collection().ReplaceOne(ctx,
		bson.M{"date": report.Date},
		report,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert pasture report: %w", err)
	}
	return nil
}

// FindPastureReport loads the archived report for a simulated date.
func (r *MongoDBRepository) FindPastureReport(ctx context.Context, date time.Time) (models.PastureReport, error) {
	var report models.PastureReport
	err := r.collection().FindOne(ctx, bson.M{"date": date}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PastureReport{}, fmt.Errorf("pasture report %s: %w", date.Format(models.DateLayout), models.ErrNotFound)
	}
	if err != nil {
		return models.PastureReport{}, fmt.Errorf("failed to load pasture report: %w", err)
	}
	return report, nil
}

// DayAdvanced archives the report of each committed simulated day.
func (r *MongoDBRepository) DayAdvanced(ctx context.Context, report models.PastureReport) error {
	return r.SavePastureReport(ctx, report)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
