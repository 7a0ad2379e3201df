// Package tenant resolves tenant IDs to live per-tenant backends. The master
// database is the source of truth for the directory; Redis caches lookups so
// the hot path does not hit the master on every request.
package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dSumitabha/multi-tenant/internal/config"
	"github.com/dSumitabha/multi-tenant/internal/infra"
	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/repository"
	"github.com/dSumitabha/multi-tenant/internal/service"
	"github.com/dSumitabha/multi-tenant/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const directoryCacheTTL = 5 * time.Minute

// Handle bundles everything request handlers need for one tenant: the
// connection pool plus the services built on top of it. A Handle is built
// once per tenant and shared by all requests for that tenant.
type Handle struct {
	DB *gorm.DB

	Products       service.ProductService
	Suppliers      service.SupplierService
	Inventory      service.InventoryService
	PurchaseOrders service.PurchaseOrderService
	SalesOrders    service.SalesOrderService
}

// Manager owns the tenant handle map. Resolution order: in-process map,
// Redis directory cache, master database. Connections are opened lazily on
// first request and kept until Close.
type Manager struct {
	cfg        *config.Config
	tenants    repository.TenantRepository
	rdb        *redis.Client
	dispatcher *worker.Dispatcher

	// Opener turns a resolved DSN into a live connection. NewManager sets the
	// Postgres opener; substitute before the first Resolve to target another
	// engine.
	Opener func(dsn string) (*gorm.DB, error)

	mu      sync.Mutex
	handles map[uuid.UUID]*Handle
}

func NewManager(cfg *config.Config, tenants repository.TenantRepository, rdb *redis.Client, dispatcher *worker.Dispatcher) *Manager {
	return &Manager{
		cfg:        cfg,
		tenants:    tenants,
		rdb:        rdb,
		dispatcher: dispatcher,
		Opener:     infra.NewTenantDatabase,
		handles:    make(map[uuid.UUID]*Handle),
	}
}

// directoryEntry is the Redis-cached projection of a directory row. Status is
// cached too so suspended tenants are rejected without a master round trip.
type directoryEntry struct {
	DBName string `json:"dbName"`
	Status string `json:"status"`
}

func directoryCacheKey(id uuid.UUID) string { return "tenant:dir:" + id.String() }

// Resolve returns the handle for a tenant, opening its database connection if
// this is the first request since startup. Suspended tenants resolve the
// directory entry but never get a connection.
func (m *Manager) Resolve(ctx context.Context, tenantID uuid.UUID) (*Handle, error) {
	m.mu.Lock()
	if h, ok := m.handles[tenantID]; ok {
		m.mu.Unlock()
		return h, nil
	}
	m.mu.Unlock()

	entry, err := m.lookupDirectory(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if entry.Status != model.TenantStatusActive {
		return nil, &service.InactiveEntityError{Entity: "tenant", ID: tenantID.String()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check under the lock: a concurrent request may have opened it.
	if h, ok := m.handles[tenantID]; ok {
		return h, nil
	}

	dsn := fmt.Sprintf(m.cfg.TenantDatabaseURLTemplate, entry.DBName)
	db, err := m.Opener(dsn)
	if err != nil {
		return nil, fmt.Errorf("open tenant database %s: %w", entry.DBName, err)
	}

	h := m.buildHandle(db)
	m.handles[tenantID] = h
	log.Info().Str("tenant_id", tenantID.String()).Str("db", entry.DBName).Msg("tenant database connected")
	return h, nil
}

func (m *Manager) buildHandle(db *gorm.DB) *Handle {
	products := repository.NewProductRepository(db)
	movements := repository.NewStockMovementRepository(db)
	snapshots := repository.NewStockSnapshotRepository(db)
	suppliers := repository.NewSupplierRepository(db)
	purchaseOrders := repository.NewPurchaseOrderRepository(db)
	salesOrders := repository.NewSalesOrderRepository(db)

	inventory := service.NewInventoryService(products, movements, snapshots, purchaseOrders, salesOrders, suppliers, m.dispatcher)

	return &Handle{
		DB:             db,
		Products:       service.NewProductService(products),
		Suppliers:      service.NewSupplierService(suppliers),
		Inventory:      inventory,
		PurchaseOrders: service.NewPurchaseOrderService(purchaseOrders, suppliers, inventory, m.dispatcher),
		SalesOrders:    service.NewSalesOrderService(salesOrders, inventory, m.dispatcher),
	}
}

func (m *Manager) lookupDirectory(ctx context.Context, tenantID uuid.UUID) (*directoryEntry, error) {
	key := directoryCacheKey(tenantID)
	if raw, err := m.rdb.Get(ctx, key).Result(); err == nil {
		var entry directoryEntry
		if jsonErr := json.Unmarshal([]byte(raw), &entry); jsonErr == nil {
			return &entry, nil
		}
		// Corrupt cache entry: fall through to the master and overwrite it.
	}

	t, err := m.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &service.NotFoundError{Entity: "tenant", ID: tenantID.String()}
		}
		return nil, err
	}

	entry := directoryEntry{DBName: t.DBName, Status: t.Status}
	if raw, err := json.Marshal(entry); err == nil {
		if err := m.rdb.Set(ctx, key, raw, directoryCacheTTL).Err(); err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("tenant directory cache write failed")
		}
	}
	return &entry, nil
}

// Evict drops a tenant's cached directory entry and closes its connection.
// Called after administrative changes (suspension, database move) so the next
// request re-resolves from the master.
func (m *Manager) Evict(ctx context.Context, tenantID uuid.UUID) {
	if err := m.rdb.Del(ctx, directoryCacheKey(tenantID)).Err(); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("tenant directory cache delete failed")
	}

	m.mu.Lock()
	h, ok := m.handles[tenantID]
	if ok {
		delete(m.handles, tenantID)
	}
	m.mu.Unlock()

	if ok {
		if err := infra.Close(h.DB); err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("tenant database close failed")
		}
	}
}

// Close releases every open tenant connection. Called once during shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, h := range m.handles {
		if err := infra.Close(h.DB); err != nil {
			log.Warn().Err(err).Str("tenant_id", id.String()).Msg("tenant database close failed")
		}
		delete(m.handles, id)
	}
}
