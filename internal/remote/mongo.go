package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blocktree/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoMirror implements Mirror for MongoDB.
type mongoMirror struct {
	client *mongo.Client
	dbName string
}

// mongoBlock is the document shape stored in the mirror collection.
type mongoBlock struct {
	ID        string    `bson:"_id"`
	ParentID  string    `bson:"parent_id"`
	Order     int       `bson:"sort_order"`
	Type      string    `bson:"block_type"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

const mirrorCollection = "blocktree_blocks"

func newMongoMirror(cfg *domain.MirrorConfig) (*mongoMirror, error) {
	var uri string

	// If host is already a full connection string (Atlas mongodb+srv:// or
	// standard mongodb://), use it directly. Otherwise build from host:port.
	if strings.HasPrefix(cfg.Host, "mongodb+srv://") || strings.HasPrefix(cfg.Host, "mongodb://") {
		uri = cfg.Host
		if cfg.Password != "" {
			uri = strings.ReplaceAll(uri, "<password>", cfg.Password)
			uri = strings.ReplaceAll(uri, "<db_password>", cfg.Password)
		}
	} else {
		port := cfg.Port
		if port == 0 {
			port = 27017
		}
		if cfg.Username != "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Username, cfg.Password, cfg.Host, port)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%d", cfg.Host, port)
		}
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	return &mongoMirror{client: client, dbName: cfg.Database}, nil
}

func (m *mongoMirror) collection() *mongo.Collection {
	return m.client.Database(m.dbName).Collection(mirrorCollection)
}

func (m *mongoMirror) Test(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoMirror) Push(ctx context.Context, blocks []domain.Block) error {
	coll := m.collection()

	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}
	if len(blocks) == 0 {
		return nil
	}

	docs := make([]any, 0, len(blocks))
	for _, b := range blocks {
		docs = append(docs, mongoBlock{
			ID:        b.ID,
			ParentID:  b.ParentID,
			Order:     b.Order,
			Type:      string(b.Type),
			Content:   b.Content,
			CreatedAt: b.CreatedAt,
			UpdatedAt: b.UpdatedAt,
		})
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("push blocks: %w", err)
	}
	return nil
}

func (m *mongoMirror) Pull(ctx context.Context) ([]domain.Block, error) {
	opts := options.Find().SetSort(bson.D{{Key: "parent_id", Value: 1}, {Key: "sort_order", Value: 1}})
	cursor, err := m.collection().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("pull blocks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoBlock
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}

	blocks := make([]domain.Block, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, domain.Block{
			ID:        d.ID,
			ParentID:  d.ParentID,
			Order:     d.Order,
			Type:      domain.BlockType(d.Type),
			Content:   d.Content,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return blocks, nil
}

func (m *mongoMirror) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
