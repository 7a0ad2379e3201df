package worker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const QueueLowStock = "jobs:low_stock"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// LowStockAlert is enqueued after a committed OUT movement leaves a variant
// at or below its reorder level. Best-effort: alerts are dispatched outside
// the stock transaction and never block or fail it.
type LowStockAlert struct {
	ProductID    string `json:"product_id"`
	VariantID    string `json:"variant_id"`
	ProductName  string `json:"product_name"`
	SKU          string `json:"sku"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorder_level"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueLowStockAlert pushes a reorder alert job to Redis.
func (d *Dispatcher) EnqueueLowStockAlert(ctx context.Context, alert LowStockAlert) error {
	return d.enqueue(ctx, QueueLowStock, "low_stock", alert)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}
