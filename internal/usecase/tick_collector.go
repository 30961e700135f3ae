package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	mid "CoinSight/internal/middleware"
)

// TickWriter lands validated ticks in the price store.
type TickWriter struct {
	store drepo.PriceStore
}

// NewTickWriter creates a price-store sink for the ingest pipeline.
func NewTickWriter(store drepo.PriceStore) *TickWriter {
	return &TickWriter{store: store}
}

func (w *TickWriter) Process(ctx context.Context, t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick is nil")
	}
	return w.store.StoreTicks(ctx, []*models.Tick{t})
}

// TickCollector consumes the live market stream and feeds the ingest
// pipeline, keeping stored history fresh between REST polls.
type TickCollector struct {
	stream  drepo.MarketStream
	writer  *TickWriter
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewTickCollector creates a new TickCollector instance.
func NewTickCollector(stream drepo.MarketStream, writer *TickWriter, metrics drepo.Metrics, pipe *mid.IngestPipeline) *TickCollector {
	return &TickCollector{stream: stream, writer: writer, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		// Both channels close when the stream's read loop dies; a nil channel
		// blocks in select, so dead channels force the reconnect path instead
		// of spinning on closed receives.
		if tickCh == nil && errCh == nil {
			if rerr := c.stream.Reconnect(ctx); rerr != nil {
				c.metrics.RecordError("stream")
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			tickCh, errCh = c.stream.Read(ctx)
		}

		select {
		case <-ctx.Done():
			return
		case err, open := <-errCh:
			if !open {
				errCh = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
				if rerr := c.stream.Reconnect(ctx); rerr == nil {
					tickCh, errCh = c.stream.Read(ctx)
				} else {
					// back off before the next error wakes us again
					time.Sleep(time.Second)
				}
			}
		case t, open := <-tickCh:
			if !open {
				tickCh = nil
				continue
			}
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.writer.Process(ctx, t)
			}
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
