package queue

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSingleWorkerCallbackOrder(t *testing.T) {
	d := NewDispatcher("test", 1, 16)
	defer d.Shutdown(true)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		err := d.Enqueue(
			func() (interface{}, error) { return i, nil },
			func(v interface{}, ok bool) {
				mu.Lock()
				order = append(order, v.(int))
				mu.Unlock()
				wg.Done()
			},
		)
		if err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("callbacks out of order: %v", order)
		}
	}
}

func TestRunSync(t *testing.T) {
	d := NewDispatcher("test", 1, 4)
	defer d.Shutdown(true)

	v, ok := d.RunSync(func() (interface{}, error) { return 42, nil }, time.Second)
	if !ok || v.(int) != 42 {
		t.Fatalf("unexpected result: %v %v", v, ok)
	}

	_, ok = d.RunSync(func() (interface{}, error) { return nil, errors.New("fail") }, time.Second)
	if ok {
		t.Fatalf("expected failure to surface as ok=false")
	}
}

func TestRunSyncTimeout(t *testing.T) {
	d := NewDispatcher("test", 1, 4)
	defer d.Shutdown(false)

	block := make(chan struct{})
	_, ok := d.RunSync(func() (interface{}, error) {
		<-block
		return "late", nil
	}, 50*time.Millisecond)
	if ok {
		t.Fatalf("expected timeout")
	}
	// The abandoned task still completes; its result is discarded.
	close(block)
}

func TestEnqueueAfterShutdown(t *testing.T) {
	d := NewDispatcher("test", 1, 4)
	d.Shutdown(true)

	err := d.Enqueue(func() (interface{}, error) { return nil, nil }, nil)
	if err == nil {
		t.Fatalf("expected enqueue to fail after shutdown")
	}
}

func TestEnqueueDuringShutdownNeverPanics(t *testing.T) {
	// Enqueue's send and Shutdown's close(tasks) are serialized by the
	// dispatcher mutex; a send sneaking in after the close would panic.
	for i := 0; i < 500; i++ {
		d := NewDispatcher("test", 1, 8)

		var wg sync.WaitGroup
		for g := 0; g < 2; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Errors (queue full, shut down) are expected here; the point
				// is that no send ever hits a closed channel.
				for j := 0; j < 100; j++ {
					_ = d.Enqueue(func() (interface{}, error) { return nil, nil }, nil)
				}
			}()
		}

		d.Shutdown(true)
		wg.Wait()

		if err := d.Enqueue(func() (interface{}, error) { return nil, nil }, nil); err == nil {
			t.Fatalf("expected enqueue to fail after shutdown")
		}
	}
}

func TestWorkerSurvivesPanickingCallback(t *testing.T) {
	d := NewDispatcher("test", 1, 4)
	defer d.Shutdown(true)

	panicDone := make(chan struct{})
	err := d.Enqueue(
		func() (interface{}, error) { return nil, nil },
		func(interface{}, bool) { close(panicDone); panic("callback boom") },
	)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	<-panicDone

	// The worker must still be alive to serve the next task.
	v, ok := d.RunSync(func() (interface{}, error) { return "alive", nil }, time.Second)
	if !ok || v.(string) != "alive" {
		t.Fatalf("worker died after callback panic")
	}
}

func TestQueueFull(t *testing.T) {
	d := NewDispatcher("test", 1, 1)
	defer d.Shutdown(false)

	block := make(chan struct{})
	defer close(block)

	// Occupy the worker, then fill the single queue slot.
	_ = d.Enqueue(func() (interface{}, error) { <-block; return nil, nil }, nil)

	// The worker may not have picked up the first task yet; fill until full.
	var err error
	for i := 0; i < 3; i++ {
		err = d.Enqueue(func() (interface{}, error) { return nil, nil }, nil)
		if err != nil {
			break
		}
	}
	if err == nil {
		t.Fatalf("expected queue full error")
	}
}
