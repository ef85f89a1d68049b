package memory

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})
	t.Cleanup(func() { _ = p.Close(ctx) })

	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	want := []byte("payload")
	if ok, err := p.Set(ctx, "k", want, 1, 0); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	got, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, want) {
		t.Fatalf("Get: got=%q ok=%v err=%v", got, ok, err)
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestTTLExpires(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})
	t.Cleanup(func() { _ = p.Close(ctx) })

	if ok, err := p.Set(ctx, "k", []byte("v"), 1, 30*time.Millisecond); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := p.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	time.Sleep(50 * time.Millisecond)
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	// lazy expiry dropped the entry
	if p.Len() != 0 {
		t.Fatalf("expired entry not pruned on read, len=%d", p.Len())
	}
}

func TestSweepPrunes(t *testing.T) {
	ctx := context.Background()
	p := New(Config{SweepInterval: 20 * time.Millisecond})
	t.Cleanup(func() { _ = p.Close(ctx) })

	if ok, err := p.Set(ctx, "short", []byte("v"), 1, 10*time.Millisecond); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "long", []byte("v"), 1, time.Minute); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}

	deadline := time.Now().Add(time.Second)
	for p.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if p.Len() != 1 {
		t.Fatalf("sweep did not prune, len=%d", p.Len())
	}
	if _, ok, _ := p.Get(ctx, "long"); !ok {
		t.Fatalf("unexpired entry swept")
	}
}

func TestCloseIdempotent(t *testing.T) {
	ctx := context.Background()
	p := New(Config{SweepInterval: time.Millisecond})
	if err := p.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(ctx); err != nil {
		t.Fatal(err)
	}
}
