package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/tvlabel/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("lexical", "Ты придёшь?")
	b := Key("lexical", "Ты придёшь?")
	c := Key("translate", "Ты придёшь?")

	if a != b {
		t.Errorf("same input produced different keys: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("namespaces must not collide")
	}
	if !strings.HasPrefix(a, "tvlabel:v1:lexical:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
	if Key("x", "ab", "c") == Key("x", "a", "bc") {
		t.Errorf("part boundaries must be part of the key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("expected v, got %q (found=%v)", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("translate", "Will you come?")

	if err := c.Set(key, []byte("Ты придёшь?"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	// a fresh instance reads what the first one wrote
	got, ok := NewDiskCache(dir, time.Hour).Get(key)
	if !ok || string(got) != "Ты придёшь?" {
		t.Errorf("unexpected disk value %q (found=%v)", got, ok)
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("delete: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired disk entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	_ = NewDiskCache(dir, time.Hour).Set("k", []byte("v"), 0)

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("expected disk hit, got %q (found=%v)", got, ok)
	}
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("expected disk hit to be promoted to memory")
	}
}

func TestNew(t *testing.T) {
	if New(model.CacheConfig{Enabled: false}) != nil {
		t.Error("disabled cache should be nil")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache); !ok {
		t.Error("expected memory cache without a directory")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir(), MemoryTTL: time.Minute, DiskTTL: time.Hour}).(*LayeredCache); !ok {
		t.Error("expected layered cache with a directory")
	}
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	key := Key("lexical", "Вы придёте?")

	want := model.Verdict{Detector: "lexical", Label: model.Formal, Rule: "lexical:formal-only", Formal: 1}
	if err := SetJSON(c, key, want); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	got, ok := GetJSON[model.Verdict](c, key)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Label != want.Label || got.Rule != want.Rule || got.Formal != 1 {
		t.Errorf("unexpected verdict %+v", got)
	}

	if _, ok := GetJSON[model.Verdict](nil, key); ok {
		t.Error("nil cache should always miss")
	}
	if err := SetJSON[model.Verdict](nil, key, want); err != nil {
		t.Errorf("nil cache set should be a no-op: %v", err)
	}
}
