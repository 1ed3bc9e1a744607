package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Invalidator consumes sale events from every terminal and evicts the sold
// products, so the next scan sees a fresher stock snapshot.
type Invalidator struct {
	reader  messageReader
	catalog *Catalog
	log     *zap.Logger
}

func NewInvalidator(catalog *Catalog, topic, groupID string, log *zap.Logger, brokers ...string) *Invalidator {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	if log == nil {
		log = zap.NewNop()
	}
	return &Invalidator{reader: reader, catalog: catalog, log: log}
}

func (i *Invalidator) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := i.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				i.log.Warn("error reading message", zap.Error(err))
				time.Sleep(time.Second)
			}
			continue
		}
		i.handle(ctx, m)
	}
}

func (i *Invalidator) Close() {
	if err := i.reader.Close(); err != nil {
		i.log.Warn("error closing reader", zap.Error(err))
	}
}

func (i *Invalidator) handle(ctx context.Context, m kafka.Message) {
	if eventType(m) != domain.EventSaleCommitted {
		return
	}

	var sale domain.SaleCommitted
	if err := json.Unmarshal(m.Value, &sale); err != nil {
		i.log.Warn("error parsing sale event", zap.ByteString("key", m.Key), zap.Error(err))
		return
	}

	ids := make([]string, 0, len(sale.Items))
	for _, item := range sale.Items {
		ids = append(ids, item.ProductID)
	}
	if err := i.catalog.Evict(ctx, ids...); err != nil {
		i.log.Warn("failed to evict sold products",
			zap.String("invoice_number", sale.InvoiceNumber),
			zap.Error(err))
	}
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}
