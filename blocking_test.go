package ddrouter

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestToBlockingResultSuccess(t *testing.T) {
	f := Go(context.Background(), nil, func(ctx context.Context) (Quote, error) {
		return Quote{En: "hi", Author: "a"}, nil
	})

	got, err := f.ToBlockingResult(time.Second)
	if err != nil {
		t.Fatalf("ToBlockingResult() returned error: %v", err)
	}
	if diff := cmp.Diff([]Quote{{En: "hi", Author: "a"}}, got); diff != "" {
		t.Errorf("Unexpected result (-want +got):\n%s", diff)
	}
}

func TestToBlockingResultWrapsPipelineError(t *testing.T) {
	f := Go(context.Background(), nil, func(ctx context.Context) (Quote, error) {
		return Quote{}, &APIError[APIMessage]{Kind: KindNotFound, StatusCode: 404}
	})

	got, err := f.ToBlockingResult(time.Second)
	if got != nil {
		t.Errorf("Expected nil result, got %v", got)
	}

	var blocking *BlockingError
	if !errors.As(err, &blocking) {
		t.Fatalf("Expected *BlockingError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected wrapped NotFound, got %v", err)
	}
}

func TestToBlockingResultTimeoutCancels(t *testing.T) {
	aborted := make(chan struct{})
	f := Go(context.Background(), nil, func(ctx context.Context) (Quote, error) {
		<-ctx.Done()
		close(aborted)
		return Quote{}, ctx.Err()
	})

	start := time.Now()
	got, err := f.ToBlockingResult(50 * time.Millisecond)
	elapsed := time.Since(start)

	if got != nil {
		t.Errorf("Expected nil result, got %v", got)
	}
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("Expected *TimeoutError, got %T: %v", err, err)
	}
	if timeout.Timeout != 50*time.Millisecond {
		t.Errorf("Expected TimeoutError(50ms), got %v", timeout.Timeout)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("Returned before the timeout elapsed: %v", elapsed)
	}

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the in-flight work to be cancelled")
	}
}

func TestToBlockingResultNonPositiveTimeout(t *testing.T) {
	done := Go(context.Background(), nil, func(ctx context.Context) (int, error) {
		return 5, nil
	})
	<-done.Done()
	if got, err := done.ToBlockingResult(0); err != nil || len(got) != 1 || got[0] != 5 {
		t.Fatalf("Expected [5] for a completed future, got %v, %v", got, err)
	}

	pending := Go(context.Background(), nil, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if _, err := pending.ToBlockingResult(0); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected timeout for a pending future, got %v", err)
	}
}

func TestToBlockingResultOverHTTP(t *testing.T) {
	release := make(chan struct{})
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	router := newTestRouter(t, Config{})
	f := Request[Quote](context.Background(), router, testEndpoint{base: server.URL, path: "/slow"})

	_, err := f.ToBlockingResult(100 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
	if _, err := f.Result(); !errors.Is(err, ErrCanceled) {
		t.Errorf("Expected the future to be cancelled, got %v", err)
	}
}

func TestToBlockingResultFromSerialQueueCallback(t *testing.T) {
	queue := NewSerialQueue()
	defer queue.Close()

	outer := Go(context.Background(), queue, func(ctx context.Context) (int, error) { return 1, nil })
	inner := Go(context.Background(), queue, func(ctx context.Context) (int, error) { return 2, nil })

	result := make(chan []int, 1)
	outer.Subscribe(func(int, error) {
		got, err := inner.ToBlockingResult(time.Second)
		if err != nil {
			t.Errorf("ToBlockingResult() returned error: %v", err)
		}
		result <- got
	})

	select {
	case got := <-result:
		if len(got) != 1 || got[0] != 2 {
			t.Errorf("Expected [2], got %v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Blocking wait on the delivery queue deadlocked")
	}
}
