package binance

import (
	"sync"
	"testing"
	"time"
)

func TestConnectionFlagConcurrentAccess(t *testing.T) {
	c := &Client{reconnectDelay: time.Millisecond, pingInterval: time.Second}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = c.IsConnected()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.connected.Store(true)
			_ = c.Close()
		}
	}()
	wg.Wait()

	if c.IsConnected() {
		t.Fatalf("expected disconnected after close")
	}
}
