package closer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	c := NewCloser(0)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) Func {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	c.Add("db", record("db"))
	c.Add("kafka", record("kafka"))
	c.AddSimple("http", func() { _ = record("http")(context.Background()) })

	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"http", "kafka", "db"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("close order = %v, want %v", order, want)
	}
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add("db", func(context.Context) error { return errors.New("pool busy") })
	c.Add("grpc", func(context.Context) error { return nil })

	err := c.Close(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "db: pool busy") {
		t.Errorf("error does not name the failed resource: %v", err)
	}
}

func TestCloser_CloseIsIdempotent(t *testing.T) {
	c := NewCloser(0)
	calls := 0
	c.Add("once", func(context.Context) error {
		calls++
		return nil
	})

	_ = c.Close(context.Background())
	_ = c.Close(context.Background())

	if calls != 1 {
		t.Errorf("close func called %d times, want 1", calls)
	}
}

func TestCloser_ForcedCloseAfterTimeout(t *testing.T) {
	c := NewCloser(100 * time.Millisecond)

	forced := make(chan struct{}, 1)
	c.Add("slow-first", func(ctx context.Context) error {
		if ctx.Err() == nil {
			forced <- struct{}{}
		}
		return nil
	})
	c.Add("stuck", func(context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	if err == nil || !strings.Contains(err.Error(), "shutdown interrupted") {
		t.Fatalf("expected interrupted shutdown, got %v", err)
	}

	select {
	case <-forced:
	case <-time.After(time.Second):
		t.Fatal("remaining resource was not force-closed")
	}
}
