package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"time"

	"verifix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	verificationLogsCollection = "verification_logs"
	principalsCollection       = "principals"
	queryTimeout               = 5 * time.Second
)

// extractDBName parses the database name from the URI, defaulting to "verifix"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "verifix"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "verifix"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)
	return client, client.Database(dbName), nil
}

// VerificationLogStore persists relay outcomes in the verification_logs collection
type VerificationLogStore struct {
	coll *mongo.Collection
}

func NewVerificationLogStore(database *mongo.Database) *VerificationLogStore {
	return &VerificationLogStore{coll: database.Collection(verificationLogsCollection)}
}

// EnsureIndexes creates the indexes the admin queries rely on
func (s *VerificationLogStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userName", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating verification log indexes: %w", err)
	}
	return nil
}

func (s *VerificationLogStore) Append(ctx context.Context, entry models.VerificationLog) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := s.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("saving verification log: %w", err)
	}
	return nil
}

func (s *VerificationLogStore) List(ctx context.Context, search string, limit int) ([]models.VerificationLog, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, searchFilter(search), opts)
	if err != nil {
		return nil, fmt.Errorf("querying verification logs: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.VerificationLog{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decoding verification logs: %w", err)
	}
	return entries, nil
}

// searchFilter matches user name or id case-insensitively
func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	return bson.M{"$or": bson.A{
		bson.M{"userName": pattern},
		bson.M{"_id": pattern},
	}}
}

// PrincipalStore holds login principals with bcrypt password hashes
type PrincipalStore struct {
	coll *mongo.Collection
}

func NewPrincipalStore(database *mongo.Database) *PrincipalStore {
	return &PrincipalStore{coll: database.Collection(principalsCollection)}
}

// FindPrincipal returns nil without error when no principal has the email
func (s *PrincipalStore) FindPrincipal(ctx context.Context, email string) (*models.StoredPrincipal, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p models.StoredPrincipal
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding principal: %w", err)
	}
	return &p, nil
}

// UpsertPrincipal creates or replaces the principal with the same email
func (s *PrincipalStore) UpsertPrincipal(ctx context.Context, p models.StoredPrincipal) (created bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"email":     p.Email,
			"role":      p.Role,
			"name":      p.Name,
			"password":  p.PasswordHash,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"email": p.Email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("saving principal: %w", err)
	}
	return res.UpsertedCount > 0, nil
}
