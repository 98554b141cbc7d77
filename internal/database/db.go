package database

import (
	"fmt"
	"log"
	"time"

	"go-optics-pos/internal/config"
	"go-optics-pos/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database, waiting for it to come up, and syncs the schema.
func Connect(cfg config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logLevel(cfg.DBLog)),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s after 5 attempts: %w", cfg.DBDriver, err)
	}
	log.Printf("Connected to %s database", cfg.DBDriver)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Println("Database schema synced")

	return db, nil
}

// Migrate creates or extends every collection table. Changes are additive only.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.Client{},
		&models.Product{},
		&models.SalesItem{},
		&models.CostItem{},
		&models.FinancialTransaction{},
		&models.ExpenseItem{},
	)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return backfillKeys(db)
}

// backfillKeys fills the folded lookup columns on rows written before they existed.
func backfillKeys(db *gorm.DB) error {
	var clients []models.Client
	if err := db.Where("search_key = '' OR search_key IS NULL").Find(&clients).Error; err != nil {
		return fmt.Errorf("backfill clients: %w", err)
	}
	for _, c := range clients {
		if err := db.Model(&models.Client{}).Where("id = ?", c.ID).UpdateColumns(models.ClientKeys(c.Name, c.Phone, c.Email)).Error; err != nil {
			return fmt.Errorf("backfill client %s: %w", c.ID, err)
		}
	}

	var orders []models.Order
	if err := db.Where("search_key = '' OR search_key IS NULL").Find(&orders).Error; err != nil {
		return fmt.Errorf("backfill orders: %w", err)
	}
	for _, o := range orders {
		key := models.OrderSearchKey(o.OrderNumber, o.CustomerName, o.CustomerPhone)
		if err := db.Model(&models.Order{}).Where("id = ?", o.ID).UpdateColumn("search_key", key).Error; err != nil {
			return fmt.Errorf("backfill order %s: %w", o.ID, err)
		}
	}

	var products []models.Product
	if err := db.Where("search_key = '' OR search_key IS NULL").Find(&products).Error; err != nil {
		return fmt.Errorf("backfill products: %w", err)
	}
	for _, p := range products {
		key := models.ProductSearchKey(p.Name, p.Brand, p.Model, p.SKU)
		if err := db.Model(&models.Product{}).Where("id = ?", p.ID).UpdateColumn("search_key", key).Error; err != nil {
			return fmt.Errorf("backfill product %s: %w", p.ID, err)
		}
	}

	var costs []models.CostItem
	if err := db.Where("search_key = '' OR search_key IS NULL").Find(&costs).Error; err != nil {
		return fmt.Errorf("backfill cost items: %w", err)
	}
	for _, c := range costs {
		key := models.CostSearchKey(c.Name, c.Description, c.Supplier)
		if err := db.Model(&models.CostItem{}).Where("id = ?", c.ID).UpdateColumn("search_key", key).Error; err != nil {
			return fmt.Errorf("backfill cost item %s: %w", c.ID, err)
		}
	}

	var expenses []models.ExpenseItem
	if err := db.Where("name_key = '' OR name_key IS NULL").Find(&expenses).Error; err != nil {
		return fmt.Errorf("backfill expenses: %w", err)
	}
	for _, e := range expenses {
		if err := db.Model(&models.ExpenseItem{}).Where("id = ?", e.ID).UpdateColumn("name_key", models.FoldKey(e.Name)).Error; err != nil {
			return fmt.Errorf("backfill expense %s: %w", e.ID, err)
		}
	}
	return nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

func logLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
