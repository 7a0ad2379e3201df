package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dSumitabha/multi-tenant/internal/config"
	"github.com/dSumitabha/multi-tenant/internal/infra"
	"github.com/dSumitabha/multi-tenant/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// seed provisions a demo tenant for local development: a directory entry and
// owner account in the master database, plus a small catalog in the tenant
// database. Safe to re-run; existing rows are left alone.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	master, err := infra.NewMasterDatabase(cfg.MasterDatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to master postgres")
	}
	defer infra.Close(master)

	tenant := model.Tenant{
		Name:   "Demo Trading Co",
		Slug:   "demo",
		DBName: "tenant_demo",
		Status: model.TenantStatusActive,
	}
	if err := master.Where("slug = ?", tenant.Slug).FirstOrCreate(&tenant).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to seed tenant")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}
	owner := model.User{
		TenantID:     tenant.ID,
		Name:         "Demo Owner",
		Email:        "owner@demo.local",
		PasswordHash: string(hash),
		Role:         "owner",
		IsActive:     true,
	}
	if err := master.Where("email = ?", owner.Email).FirstOrCreate(&owner).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to seed owner user")
	}

	db, err := infra.NewTenantDatabase(fmt.Sprintf(cfg.TenantDatabaseURLTemplate, tenant.DBName))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to tenant postgres")
	}
	defer infra.Close(db)

	supplier := model.Supplier{Name: "Acme Wholesale", IsActive: true}
	if err := db.Where("name = ?", supplier.Name).FirstOrCreate(&supplier).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to seed supplier")
	}

	product := model.Product{
		Name: "Classic Tee",
		Attributes: []model.ProductAttribute{
			{Name: "size", Values: []string{"S", "M", "L"}},
		},
		IsActive: true,
		Variants: []model.Variant{
			{SKU: "TEE-S", Attributes: map[string]string{"size": "S"}, Price: decimal.NewFromInt(15), Stock: 20, ReorderLevel: 5, IsActive: true},
			{SKU: "TEE-M", Attributes: map[string]string{"size": "M"}, Price: decimal.NewFromInt(15), Stock: 25, ReorderLevel: 5, IsActive: true},
			{SKU: "TEE-L", Attributes: map[string]string{"size": "L"}, Price: decimal.NewFromInt(17), Stock: 10, ReorderLevel: 5, IsActive: true},
		},
	}
	if err := db.Where("name = ?", product.Name).FirstOrCreate(&product).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to seed product")
	}

	log.Info().
		Str("tenant_id", tenant.ID.String()).
		Str("email", owner.Email).
		Msg("demo tenant seeded")
}
