// Package mongostore persists the system state in MongoDB: the users and
// tasks collections hold full snapshots, finished_tasks grows append-only.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emipaz/gestortareas/internal/core/domain"
)

const (
	collectionUsers   = "users"
	collectionTasks   = "tasks"
	collectionArchive = "finished_tasks"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB
// connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Store implements ports.PersistenceGateway on MongoDB.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	users   *mongo.Collection
	tasks   *mongo.Collection
	archive *mongo.Collection
}

// Connect establishes a MongoDB client, verifies connectivity with a ping,
// and returns a ready store. A default timeout is applied when none is
// provided.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Store{
		client:  client,
		db:      db,
		users:   db.Collection(collectionUsers),
		tasks:   db.Collection(collectionTasks),
		archive: db.Collection(collectionArchive),
	}, nil
}

// Disconnect closes the underlying client.
func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Database exposes the underlying handle so the readiness probe can ping it.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// userRecord is the stored shape of a user. The credential travels as its
// raw hash; an absent hash means the credential was never set.
type userRecord struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	DisplayName  string    `bson:"display_name"`
	Role         string    `bson:"role"`
	PasswordHash string    `bson:"password_hash,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Name:         u.Name,
		DisplayName:  u.DisplayName,
		Role:         string(u.Role),
		PasswordHash: u.Credential.Hash(),
		CreatedAt:    u.CreatedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:          r.ID,
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Role:        domain.Role(r.Role),
		Credential:  domain.CredentialFromHash(r.PasswordHash),
		CreatedAt:   r.CreatedAt,
	}
}

func (s *Store) LoadAll(ctx context.Context) ([]*domain.User, []*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, nil, fmt.Errorf("find users: %w", err)
	}
	var records []userRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]*domain.User, 0, len(records))
	for _, r := range records {
		users = append(users, r.toDomain())
	}

	cur, err = s.tasks.Find(ctx, bson.M{})
	if err != nil {
		return nil, nil, fmt.Errorf("find tasks: %w", err)
	}
	var tasks []*domain.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, nil, fmt.Errorf("decode tasks: %w", err)
	}

	return users, tasks, nil
}

// SaveAll replaces both collections with the given snapshot. The clear and
// insert are not transactional; the service serializes all writes, so no
// concurrent writer can land in the gap.
func (s *Store) SaveAll(ctx context.Context, users []*domain.User, tasks []*domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.users.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	if len(users) > 0 {
		docs := make([]any, 0, len(users))
		for _, u := range users {
			docs = append(docs, toUserRecord(u))
		}
		if _, err := s.users.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert users: %w", err)
		}
	}

	if _, err := s.tasks.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	if len(tasks) > 0 {
		docs := make([]any, 0, len(tasks))
		for _, t := range tasks {
			docs = append(docs, t)
		}
		if _, err := s.tasks.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert tasks: %w", err)
		}
	}

	return nil
}

func (s *Store) AppendArchive(ctx context.Context, entry domain.ArchiveEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.archive.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert archive entry: %w", err)
	}
	return nil
}

func (s *Store) ReadArchive(ctx context.Context) ([]domain.ArchiveEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.archive.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "archived_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find archive: %w", err)
	}
	var entries []domain.ArchiveEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	return entries, nil
}

// EnsureIndexes creates the indexes the store relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = s.archive.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "archived_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("archive index: %w", err)
	}
	return nil
}
