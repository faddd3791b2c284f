package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageReader is the slice of kafka.Reader the listener needs;
// tests inject fakes.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// stockUpdate is the payload pushed when a product's stock changes.
type stockUpdate struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

// StockListener consumes stock-update events and applies them to the
// catalog store. Best effort: malformed or unknown-product messages are
// logged and skipped, the loop keeps reading until the context ends.
type StockListener struct {
	store  *Store
	reader messageReader
	logger *zap.Logger
}

func NewStockListener(store *Store, logger *zap.Logger, brokers ...string) *StockListener {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "stock-updates",
		GroupID:  "storefront-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &StockListener{store: store, reader: reader, logger: logger}
}

func (l *StockListener) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		l.consumeOne(ctx)
	}
}

func (l *StockListener) Close() {
	if err := l.reader.Close(); err != nil {
		l.logger.Error("error closing stock-update reader", zap.Error(err))
	}
}

func (l *StockListener) consumeOne(ctx context.Context) {
	m, err := l.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Error("error reading stock-update message", zap.Error(err))
		}
		return
	}

	var update stockUpdate
	if err := json.Unmarshal(m.Value, &update); err != nil {
		l.logger.Error("error parsing stock-update message", zap.Error(err))
		return
	}
	if update.ProductID == "" {
		l.logger.Warn("stock update missing product_id")
		return
	}

	if err := l.store.SetStock(update.ProductID, update.Stock); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			l.logger.Warn("stock update for unknown product",
				zap.String("product_id", update.ProductID))
			return
		}
		l.logger.Error("failed to apply stock update",
			zap.String("product_id", update.ProductID), zap.Error(err))
	}
}
