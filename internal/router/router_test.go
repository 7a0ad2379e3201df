package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dSumitabha/multi-tenant/internal/config"
	"github.com/dSumitabha/multi-tenant/internal/model"
	"github.com/dSumitabha/multi-tenant/internal/service"
	"github.com/dSumitabha/multi-tenant/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSigningKey = "role-matrix-signing-key"

// stubDirectory serves a single active tenant from memory, standing in for
// the master database.
type stubDirectory struct{ tenant *model.Tenant }

func (s *stubDirectory) Create(ctx context.Context, t *model.Tenant) error { return nil }

func (s *stubDirectory) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	if id == s.tenant.ID {
		return s.tenant, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDirectory) FindBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	return nil, gorm.ErrRecordNotFound
}

// newTestRouter builds the full engine with the tenant backend swapped for an
// in-memory SQLite database, so requests traverse the real middleware chain.
func newTestRouter(t *testing.T) (*gin.Engine, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.Variant{},
		&model.StockMovement{},
		&model.StockSnapshot{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.SalesOrder{},
		&model.SalesOrderItem{},
	))

	tenantID := uuid.New()
	dir := &stubDirectory{tenant: &model.Tenant{
		ID:     tenantID,
		Name:   "Demo Trading Co",
		Slug:   "demo",
		DBName: "tenant_demo",
		Status: model.TenantStatusActive,
	}}

	cfg := &config.Config{JWTSecret: testSigningKey, TenantDatabaseURLTemplate: "%s"}
	// Unreachable address: directory lookups fall through to the stub.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	manager := tenant.NewManager(cfg, dir, rdb, nil)
	manager.Opener = func(string) (*gorm.DB, error) { return db, nil }

	return New(cfg, nil, rdb, manager), tenantID
}

func signRoleToken(t *testing.T, tenantID uuid.UUID, role string) string {
	t.Helper()
	claims := service.AuthClaims{
		UserID:   uuid.NewString(),
		TenantID: tenantID.String(),
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return signed
}

func TestRouter_RoleGates(t *testing.T) {
	r, tenantID := newTestRouter(t)
	orderID := uuid.NewString()

	cases := []struct {
		name   string
		role   string
		method string
		path   string
		body   string
		want   int
	}{
		{"staff lists suppliers", "staff", http.MethodGet, "/v1/suppliers", "", http.StatusOK},
		{"staff cannot create supplier", "staff", http.MethodPost, "/v1/suppliers", `{}`, http.StatusForbidden},
		{"staff lists products", "staff", http.MethodGet, "/v1/products", "", http.StatusOK},
		{"manager cannot create product", "manager", http.MethodPost, "/v1/products", `{}`, http.StatusForbidden},
		{"owner product payload is validated", "owner", http.MethodPost, "/v1/products", `{}`, http.StatusUnprocessableEntity},
		{"staff lists purchase orders", "staff", http.MethodGet, "/v1/purchase-orders", "", http.StatusOK},
		{"staff cannot advance purchase order", "staff", http.MethodPatch, "/v1/purchase-orders/" + orderID + "/status", `{"action":"NEXT"}`, http.StatusForbidden},
		{"staff lists sales orders", "staff", http.MethodGet, "/v1/sales-orders", "", http.StatusOK},
		{"staff cannot advance sales order", "staff", http.MethodPatch, "/v1/sales-orders/" + orderID + "/status", `{"action":"NEXT"}`, http.StatusForbidden},
		{"manager advances missing sales order", "manager", http.MethodPatch, "/v1/sales-orders/" + orderID + "/status", `{"action":"NEXT"}`, http.StatusNotFound},
		{"staff cannot adjust inventory", "staff", http.MethodPost, "/v1/inventory/adjustment", `{}`, http.StatusForbidden},
		{"staff reads dashboard", "staff", http.MethodGet, "/v1/dashboard/inventory", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Authorization", "Bearer "+signRoleToken(t, tenantID, tc.role))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
