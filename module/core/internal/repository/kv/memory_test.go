package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	v, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(v) != "v1" {
		t.Errorf("expected v1, got %s", v)
	}

	// returned slice must not alias stored value
	v[0] = 'x'
	v, _ = m.Get(ctx, "k")
	if string(v) != "v1" {
		t.Errorf("stored value mutated: %s", v)
	}

	if err := m.Remove(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "a", []byte("1"))
	_ = m.Set(ctx, "b", []byte("2"))

	if err := m.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b"} {
		if _, err := m.Get(ctx, k); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", k, err)
		}
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := GetJSON[bool](ctx, m, "flag")
	if err != nil || ok {
		t.Fatalf("expected absent without error, got ok=%v err=%v", ok, err)
	}

	if err := SetJSON(ctx, m, "flag", true); err != nil {
		t.Fatal(err)
	}
	v, ok, err := GetJSON[bool](ctx, m, "flag")
	if err != nil || !ok || !v {
		t.Fatalf("expected true, got v=%v ok=%v err=%v", v, ok, err)
	}

	_ = m.Set(ctx, "broken", []byte("{"))
	if _, _, err := GetJSON[bool](ctx, m, "broken"); err == nil {
		t.Fatal("expected decode error")
	}
}
