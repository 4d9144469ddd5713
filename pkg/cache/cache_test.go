package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "layout:x", []byte("positions"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if data, hit, err := c.Get(ctx, "layout:x"); hit || data != nil || err != nil {
		t.Errorf("Get() = %q, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "layout:x"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func newFileCache(t *testing.T) *FileCache {
	t.Helper()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)

	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Fatal("Get() on empty cache hit")
	}
	want := `{"n1":{"x":0,"y":0}}`
	if err := c.Set(ctx, "layout:a", []byte(want), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:a")
	if err != nil || !hit || string(data) != want {
		t.Fatalf("Get() = %q, %v, %v, want hit %q", data, hit, err, want)
	}

	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("Get() after Delete() hit")
	}
	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("Delete() of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte("a"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("b"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry hit")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Errorf("expired entry not removed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl missed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)
	p := c.path("broken")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "broken"); hit || err != nil {
		t.Errorf("Get() = %v, %v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear() left %d entries", len(entries))
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("ARCHFLOW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ARCHFLOW_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	key := "archflow:test:" + Hash([]byte(t.Name()))
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get() = hit %v, err %v, want miss", hit, err)
	}
	if err := c.Set(ctx, key, []byte("positions"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "positions" {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}
}

func TestHash(t *testing.T) {
	tests := []struct {
		a, b  string
		equal bool
	}{
		{"gateway", "gateway", true},
		{"gateway", "Gateway", false},
		{"", "", true},
	}
	for _, tt := range tests {
		ha, hb := Hash([]byte(tt.a)), Hash([]byte(tt.b))
		if (ha == hb) != tt.equal {
			t.Errorf("Hash(%q) == Hash(%q) is %v, want %v", tt.a, tt.b, ha == hb, tt.equal)
		}
		if len(ha) != 64 {
			t.Errorf("len(Hash(%q)) = %d, want 64", tt.a, len(ha))
		}
	}
}

func TestHashJSON(t *testing.T) {
	a, err := HashJSON(map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("HashJSON() error: %v", err)
	}
	b, _ := HashJSON(map[string]int{"a": 1, "b": 2})
	if a != b {
		t.Error("HashJSON depends on map insertion order")
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON(func) succeeded")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lr := k.LayoutKey("h", LayoutKeyOpts{Direction: "LR", NodeWidth: 240})
	tb := k.LayoutKey("h", LayoutKeyOpts{Direction: "TB", NodeWidth: 240})
	if lr == tb {
		t.Error("layout keys ignore direction")
	}
	if !strings.HasPrefix(lr, KeyTypeLayout+":") {
		t.Errorf("LayoutKey() = %s, want %s: prefix", lr, KeyTypeLayout)
	}

	svg := k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	png := k.ArtifactKey("h", ArtifactKeyOpts{Format: "png@2"})
	if svg == png {
		t.Error("artifact keys ignore format")
	}
	if !strings.HasPrefix(svg, KeyTypeArtifact+":") {
		t.Errorf("ArtifactKey() = %s, want %s: prefix", svg, KeyTypeArtifact)
	}
}

func TestWithPrefix(t *testing.T) {
	base := NewDefaultKeyer()
	opts := ArtifactKeyOpts{Format: "svg"}

	tests := []struct {
		name   string
		inner  Keyer
		prefix string
		want   string
	}{
		{"prefixed", base, "archflow:prod:", "archflow:prod:" + base.ArtifactKey("h", opts)},
		{"nil inner", nil, "p:", "p:" + base.ArtifactKey("h", opts)},
		{"empty prefix", base, "", base.ArtifactKey("h", opts)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithPrefix(tt.inner, tt.prefix).ArtifactKey("h", opts); got != tt.want {
				t.Errorf("ArtifactKey() = %s, want %s", got, tt.want)
			}
		})
	}

	k := WithPrefix(base, "staging:")
	if got := k.LayoutKey("h", LayoutKeyOpts{}); !strings.HasPrefix(got, "staging:layout:") {
		t.Errorf("LayoutKey() = %s, want staging:layout: prefix", got)
	}
}
