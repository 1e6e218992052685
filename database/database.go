package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"ecopoints-server/models"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

var Database *DB

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Database = &DB{db}
	return Database, nil
}

// InitializeTables creates all tables if they don't exist
func (db *DB) InitializeTables() error {
	// Enable pgcrypto extension
	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`); err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	// Define the order of table creation (respecting foreign key dependencies)
	tables := []interface{}{
		models.User{},
		models.WasteType{},
		models.Reward{},
		models.Delivery{},
		models.DeliveryItem{},
		models.LedgerEntry{},
		models.Redemption{},
	}

	for _, model := range tables {
		if tableModel, ok := model.(interface {
			TableName() string
			CreateTableSQL() string
		}); ok {
			tableName := tableModel.TableName()
			createSQL := tableModel.CreateTableSQL()

			log.Printf("Creating table: %s", tableName)
			if _, err := db.Exec(createSQL); err != nil {
				return fmt.Errorf("failed to create table %s: %w", tableName, err)
			}
		}
	}

	// Run schema migrations
	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("All tables created successfully!")
	return nil
}

// runMigrations handles schema updates and seed data for existing tables
func (db *DB) runMigrations() error {
	migrations := []string{
		// The idempotency guard: a (reason, ref_id) pair can only ever be
		// written once, no matter how many times a request is retried.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_ledger_entries_reason_ref ON ledger_entries(reason, ref_id);`,

		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_id ON ledger_entries(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_owner_id ON deliveries(owner_id);`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status);`,
		`CREATE INDEX IF NOT EXISTS idx_delivery_items_delivery_id ON delivery_items(delivery_id);`,
		`ALTER TABLE delivery_items ADD COLUMN IF NOT EXISTS seq BIGSERIAL UNIQUE;`,
		`CREATE INDEX IF NOT EXISTS idx_redemptions_user_id ON redemptions(user_id);`,

		// Seed the waste type catalog (managed outside this server; content
		// here is the campus default set)
		`INSERT INTO waste_types (name, points_per_kg) VALUES
			('paper', 10),
			('plastic', 15),
			('glass', 8),
			('metal', 20),
			('electronics', 50),
			('organic', 5)
		 ON CONFLICT (name) DO NOTHING;`,

		// Seed the reward catalog
		`INSERT INTO rewards (name, description, points_required)
		 SELECT v.name, v.description, v.points_required
		 FROM (VALUES
			('Campus Mug', 'Reusable thermal mug', 500::BIGINT),
			('Water Bottle', 'Stainless steel bottle', 800::BIGINT),
			('Canteen Voucher', 'One free meal at the campus canteen', 1200::BIGINT),
			('Eco Tote Bag', 'Organic cotton tote bag', 300::BIGINT)
		 ) AS v(name, description, points_required)
		 WHERE NOT EXISTS (SELECT 1 FROM rewards WHERE rewards.name = v.name);`,

		// Create a staff user if none exists
		`INSERT INTO users (id, email, full_name, role, is_active, created_at)
		 VALUES (gen_random_uuid(), 'staff@campus.edu', 'Collection Point Staff', 'staff', true, now())
		 ON CONFLICT (email) DO NOTHING;`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			log.Printf("Warning: Migration %d failed: %v", i+1, err)
			// Continue with other migrations even if one fails
		}
	}

	log.Println("Migrations completed!")
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
