package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %v, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "graph:abc"); hit {
		t.Error("empty cache reported a hit")
	}
	if err := c.Set(ctx, "graph:abc", []byte{0, 1, 2}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "graph:abc")
	if err != nil || !hit || string(data) != "\x00\x01\x02" {
		t.Errorf("Get = %v, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "graph:abc"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Errorf("expired entry not removed: %v", err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	os.MkdirAll(filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte("not msgpack \xc1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get on corrupt entry = %v, %v, want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("hit after Clear")
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("different inputs share a hash")
	}
	if n := len(Hash(nil)); n != 64 {
		t.Errorf("len(Hash) = %d, want 64", n)
	}

	path := filepath.Join(t.TempDir(), "ref.fa")
	if err := os.WriteFile(path, []byte(">1\nACGT\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if want := Hash([]byte(">1\nACGT\n")); got != want {
		t.Errorf("HashFile = %s, want %s", got, want)
	}
	if _, err := HashFile(path + ".missing"); err == nil {
		t.Error("HashFile on missing file succeeded")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := GraphKeyOpts{ReferenceHash: "r", VariantsHash: "v", Strategy: "structural"}
	other := base
	other.Strategy = "variants"
	if k.GraphKey(base) == k.GraphKey(other) {
		t.Error("strategy does not change the graph key")
	}
	if k.GraphKey(base) != k.GraphKey(base) {
		t.Error("GraphKey is not deterministic")
	}
	if !strings.HasPrefix(k.GraphKey(base), "graph:") {
		t.Errorf("GraphKey = %s, want graph: prefix", k.GraphKey(base))
	}

	if k.VariantTableKey("g", "v", 1) == k.VariantTableKey("g", "v", 2) {
		t.Error("chromosome does not change the table key")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "staging:")
	inner := NewDefaultKeyer()

	opts := GraphKeyOpts{ReferenceHash: "r"}
	if got, want := scoped.GraphKey(opts), "staging:"+inner.GraphKey(opts); got != want {
		t.Errorf("GraphKey = %s, want %s", got, want)
	}
	if got, want := scoped.VariantTableKey("g", "v", 1), "staging:"+inner.VariantTableKey("g", "v", 1); got != want {
		t.Errorf("VariantTableKey = %s, want %s", got, want)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable(Retryable(err)) = false")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("Retryable does not unwrap")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("plain error reported retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()
	ctx := context.Background()

	calls := 0
	errPermanent := errors.New("permanent")
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return errPermanent
	})
	if err != errPermanent || calls != 1 {
		t.Errorf("non-retryable: err = %v, calls = %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err = %v, calls = %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err = %v, calls = %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrUnavailable) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestClassify(t *testing.T) {
	if err := classify(nil); err != nil {
		t.Errorf("classify(nil) = %v", err)
	}
	if err := classify(redis.Nil); IsRetryable(err) || !errors.Is(err, redis.Nil) {
		t.Errorf("classify(redis.Nil) = %v, want redis.Nil unchanged", err)
	}
	netErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	if err := classify(netErr); !IsRetryable(err) || !errors.Is(err, ErrUnavailable) {
		t.Errorf("classify(net error) = %v, want retryable ErrUnavailable", err)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisConfig{URL: "http://nope"}); err == nil {
		t.Error("NewRedisCache accepted a non-redis URL")
	}
}

func TestNewMongoCacheBadURI(t *testing.T) {
	if _, err := NewMongoCache(context.Background(), MongoConfig{URI: "http://nope"}); err == nil {
		t.Error("NewMongoCache accepted a non-mongodb URI")
	}
}

func TestClassifyMongo(t *testing.T) {
	if err := classifyMongo(mongo.ErrNoDocuments); !errors.Is(err, mongo.ErrNoDocuments) || IsRetryable(err) {
		t.Errorf("classifyMongo(ErrNoDocuments) = %v, want it unchanged", err)
	}
	if err := classifyMongo(context.DeadlineExceeded); !IsRetryable(err) || !errors.Is(err, ErrUnavailable) {
		t.Errorf("classifyMongo(DeadlineExceeded) = %v, want retryable ErrUnavailable", err)
	}
	if err := classifyMongo(errors.New("duplicate key")); IsRetryable(err) {
		t.Errorf("classifyMongo(other) = %v, want not retryable", err)
	}
}
