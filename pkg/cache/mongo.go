package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a [MongoCache].
type MongoConfig struct {
	// URI is a mongodb:// or mongodb+srv:// connection string.
	URI string
	// Database defaults to "seqgraph".
	Database string
	// Collection defaults to "cache".
	Collection string
	// Timeout bounds each operation. Zero uses five seconds.
	Timeout time.Duration
}

// MongoCache stores entries as documents. Expiry is enforced on read and
// by a TTL index, which mongod sweeps about once a minute.
type MongoCache struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoCache connects, pings and ensures the TTL index.
func NewMongoCache(ctx context.Context, cfg MongoConfig) (*MongoCache, error) {
	if cfg.Database == "" {
		cfg.Database = "seqgraph"
	}
	if cfg.Collection == "" {
		cfg.Collection = "cache"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	c := &MongoCache{
		client:  client,
		coll:    client.Database(cfg.Database).Collection(cfg.Collection),
		timeout: cfg.Timeout,
	}

	err = RetryWithBackoff(ctx, func() error {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return classifyMongo(client.Ping(cctx, nil))
	})
	if err == nil {
		_, err = c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		})
	}
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return c, nil
}

// Get implements [Cache].
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := RetryWithBackoff(ctx, func() error {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return classifyMongo(c.coll.FindOne(cctx, bson.M{"_id": key}).Decode(&e))
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set implements [Cache].
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		exp := time.Now().Add(ttl).UTC()
		e.ExpiresAt = &exp
	}
	return RetryWithBackoff(ctx, func() error {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		_, err := c.coll.ReplaceOne(cctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
		return classifyMongo(err)
	})
}

// Delete implements [Cache].
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_, err := c.coll.DeleteOne(cctx, bson.M{"_id": key})
	return err
}

// Close implements [Cache].
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.client.Disconnect(ctx)
}

func classifyMongo(err error) error {
	if err == nil || errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return Retryable(fmt.Errorf("%w: %w", ErrUnavailable, err))
	}
	return err
}

var _ Cache = (*MongoCache)(nil)
