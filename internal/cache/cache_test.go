package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestKeyDeterministicAndDistinct(t *testing.T) {
	a := Key("openai", "risk", "some comment")
	b := Key("openai", "risk", "some comment")
	if a != b {
		t.Errorf("same parts produced different keys: %q vs %q", a, b)
	}

	c := Key("openai", "sentiment", "some comment")
	if a == c {
		t.Error("different ops produced the same key")
	}

	// Part boundaries matter: ("ab","c") != ("a","bc").
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("part boundaries are not part of the key")
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("unexpected hit on empty cache")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found := c.Get("k")
	if !found || string(got) != "v" {
		t.Errorf("Get = %q, %v; want %q, true", got, found, "v")
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("value survived Delete")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set(Key("semantic", "analyze"), []byte(`{"themes":[]}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found := c.Get(Key("semantic", "analyze"))
	if !found || string(got) != `{"themes":[]}` {
		t.Errorf("Get = %q, %v", got, found)
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expired entry served")
	}
}

func TestLayeredPromotesDiskHits(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	layered := NewLayeredCache(time.Minute, dir, time.Hour)

	// Seed only the disk layer, then read through the layered cache.
	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("seed disk: %v", err)
	}

	got, found := layered.Get("k")
	if !found || string(got) != "v" {
		t.Fatalf("layered Get = %q, %v", got, found)
	}

	// Now present in the memory layer as well.
	if _, found := layered.memory.Get("k"); !found {
		t.Error("disk hit was not promoted to memory")
	}
}
