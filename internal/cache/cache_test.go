package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/steamlytics/steamglass/internal/domain"
)

func TestLRUCache(t *testing.T) {
	cache := NewLRUCache(100)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		err := cache.Set(ctx, "key1", []byte("value1"), time.Minute)
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		val, err := cache.Get(ctx, "key1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		if string(val) != "value1" {
			t.Errorf("expected 'value1', got '%s'", string(val))
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		val, err := cache.Get(ctx, "nonexistent")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != nil {
			t.Errorf("expected nil for cache miss, got: %v", val)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = cache.Set(ctx, "key2", []byte("value2"), time.Minute)

		err := cache.Delete(ctx, "key2")
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		val, _ := cache.Get(ctx, "key2")
		if val != nil {
			t.Error("expected nil after delete")
		}
	})

	t.Run("TTLExpiration", func(t *testing.T) {
		_ = cache.Set(ctx, "expiring", []byte("temp"), 10*time.Millisecond)

		val, _ := cache.Get(ctx, "expiring")
		if string(val) != "temp" {
			t.Error("expected value before expiry")
		}

		time.Sleep(20 * time.Millisecond)

		val, _ = cache.Get(ctx, "expiring")
		if val != nil {
			t.Error("expected nil after TTL expiry")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = cache.Set(ctx, "key3", []byte("old"), time.Minute)
		_ = cache.Set(ctx, "key3", []byte("new"), time.Minute)

		val, _ := cache.Get(ctx, "key3")
		if string(val) != "new" {
			t.Errorf("expected 'new', got '%s'", string(val))
		}
	})
}

func TestLRUCacheEviction(t *testing.T) {
	cache := NewLRUCache(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("key%d", i), []byte("v"), time.Minute)
	}

	// Touch key0 so key1 becomes the oldest.
	_, _ = cache.Get(ctx, "key0")

	_ = cache.Set(ctx, "key3", []byte("v"), time.Minute)

	if val, _ := cache.Get(ctx, "key1"); val != nil {
		t.Error("expected key1 to be evicted")
	}
	if val, _ := cache.Get(ctx, "key0"); val == nil {
		t.Error("expected recently used key0 to survive")
	}
	if val, _ := cache.Get(ctx, "key3"); val == nil {
		t.Error("expected newest key3 to survive")
	}

	size, capacity := cache.Stats()
	if size != 3 || capacity != 3 {
		t.Errorf("Stats() = %d/%d, want 3/3", size, capacity)
	}
}

func TestLRUCacheDefaultSize(t *testing.T) {
	cache := NewLRUCache(0)
	_, capacity := cache.Stats()
	if capacity != 1024 {
		t.Errorf("default capacity = %d, want 1024", capacity)
	}
}

func TestLRUCacheClose(t *testing.T) {
	cache := NewLRUCache(10)
	ctx := context.Background()

	_ = cache.Set(ctx, "key", []byte("v"), time.Minute)
	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	val, _ := cache.Get(ctx, "key")
	if val != nil {
		t.Error("expected empty cache after Close")
	}
}

func TestLRUCacheConcurrency(t *testing.T) {
	cache := NewLRUCache(100)
	ctx := context.Background()
	done := make(chan struct{})

	for w := 0; w < 8; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", i%50)
				_ = cache.Set(ctx, key, []byte("v"), time.Minute)
				_, _ = cache.Get(ctx, key)
			}
		}(w)
	}
	for w := 0; w < 8; w++ {
		<-done
	}
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := New(domain.CacheConfig{Type: "memcached"})
	if err == nil {
		t.Fatal("expected error for unsupported cache type")
	}
}

func TestNewMemory(t *testing.T) {
	c, err := New(domain.CacheConfig{Type: "memory", LocalMaxSize: 16})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
