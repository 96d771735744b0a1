// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/pos-backend/internal/domain/audit"
	"github.com/your-org/pos-backend/internal/domain/client"
	"github.com/your-org/pos-backend/internal/domain/financial"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/domain/promotion"
	"github.com/your-org/pos-backend/internal/domain/purchase"
	"github.com/your-org/pos-backend/internal/domain/sale"
	"github.com/your-org/pos-backend/internal/domain/stock"
	"github.com/your-org/pos-backend/internal/domain/supplier"
	"github.com/your-org/pos-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},

		&product.Category{},
		&supplier.Supplier{},
		&product.Product{},

		&client.Client{},

		&sale.Sale{},
		&sale.SaleItem{},

		&stock.StockMovement{},

		&financial.FinancialAccount{},

		&purchase.PurchaseOrder{},
		&purchase.PurchaseOrderItem{},

		&promotion.Promotion{},

		&audit.AuditLog{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_barcode ON products(barcode)",
		"CREATE INDEX IF NOT EXISTS idx_products_low_stock ON products(quantity, min_quantity)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Client indexes
		"CREATE INDEX IF NOT EXISTS idx_clients_document ON clients(document)",
		"CREATE INDEX IF NOT EXISTS idx_clients_debt ON clients(current_debt)",

		// Sale indexes
		"CREATE INDEX IF NOT EXISTS idx_sales_client_status ON sales(client_id, payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_sales_status_created ON sales(payment_status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sales_sale_number ON sales(sale_number)",
		"CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id)",
		"CREATE INDEX IF NOT EXISTS idx_sale_items_product ON sale_items(product_id)",

		// Stock movement indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_type ON stock_movements(type)",

		// Financial account indexes
		"CREATE INDEX IF NOT EXISTS idx_financial_accounts_type_status ON financial_accounts(type, status)",
		"CREATE INDEX IF NOT EXISTS idx_financial_accounts_due_date ON financial_accounts(due_date)",

		// Purchase order indexes
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_supplier_status ON purchase_orders(supplier_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_order_items_order ON purchase_order_items(purchase_order_id)",

		// Promotion indexes
		"CREATE INDEX IF NOT EXISTS idx_promotions_product_dates ON promotions(product_id, start_date, end_date)",

		// Audit log indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_created ON audit_logs(user_id, created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedOperatorUser(); err != nil {
		return fmt.Errorf("failed to seed operator user: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates default product categories
func (m *Migration) seedCategories() error {
	log.Println("🏷️ Seeding categories...")

	categories := []product.Category{
		{
			Name:        "Bebidas",
			Description: "Refrigerantes, sucos, águas e bebidas em geral",
			IsActive:    true,
		},
		{
			Name:        "Mercearia",
			Description: "Alimentos não perecíveis e itens de despensa",
			IsActive:    true,
		},
		{
			Name:        "Hortifruti",
			Description: "Frutas, verduras e legumes",
			IsActive:    true,
		},
		{
			Name:        "Limpeza",
			Description: "Produtos de limpeza e higiene doméstica",
			IsActive:    true,
		},
		{
			Name:        "Padaria",
			Description: "Pães, bolos e produtos de panificação",
			IsActive:    true,
		},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("name = ?", category.Name).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", category.Name)
		} else {
			log.Printf("⏭️ Category already exists: %s", category.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin@2024!"), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		adminUser := user.User{
			Email:     "admin@example.com",
			Password:  string(hashedPassword),
			FirstName: "Admin",
			LastName:  "User",
			IsActive:  true,
			IsAdmin:   true,
		}

		if err := m.db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Printf("✅ Created admin user: admin@example.com (ID: %d)", adminUser.ID)
	} else {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
	}

	return nil
}

func (m *Migration) seedOperatorUser() error {
	log.Println("👤 Seeding operator user...")

	var existing user.User
	result := m.db.Where("email = ?", "caixa@example.com").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Caixa@2024!"), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		operator := user.User{
			Email:     "caixa@example.com",
			Password:  string(hashedPassword),
			FirstName: "Operador",
			LastName:  "Caixa",
			IsActive:  true,
			IsAdmin:   false,
		}

		if err := m.db.Create(&operator).Error; err != nil {
			return err
		}

		log.Println("✅ Created operator user: caixa@example.com")
	} else {
		log.Println("⏭️ Operator user already exists")
	}

	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"audit_logs",
		"promotions",
		"purchase_order_items",
		"purchase_orders",
		"financial_accounts",
		"stock_movements",
		"sale_items",
		"sales",
		"clients",
		"products",
		"suppliers",
		"categories",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}
