package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"

	"github.com/alexedwards/argon2id"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/noah-isme/kasir-pos/internal/catalog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProducts(db)
	seedCashiers(db)

	log.Println("Seeding completed successfully!")
}

// defaultProducts is the demo catalog used when no seed file is given.
const defaultProducts = `[
	{"name": "Es Teh", "price": 39000, "quickDisplay": true, "displayOrder": 1},
	{"name": "Kopi Susu", "price": 45000, "quickDisplay": true, "displayOrder": 2},
	{"name": "Teh Botol", "price": 7500, "barcode": "8990001112223", "displayOrder": 3},
	{"name": "Roti Tawar", "price": 18000, "barcode": "8990004445556", "displayOrder": 4},
	{"name": "Gula Pasir", "price": 15000, "weighed": true, "displayOrder": 5},
	{"name": "Beras Premium", "price": 14500, "weighed": true, "displayOrder": 6},
	{"name": "Stok Lama", "price": 5000, "visible": false, "displayOrder": 99}
]`

func seedProducts(db *sql.DB) {
	payload := []byte(defaultProducts)
	if path := os.Getenv("PRODUCT_SEED_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read seed file %s: %v", path, err)
		}
		payload = data
	}

	// Seed records come from heterogeneous sources, so each row passes
	// through the catalog normalizer before it touches the database.
	var raw []catalog.RawProduct
	if err := json.Unmarshal(payload, &raw); err != nil {
		log.Fatalf("Failed to parse product seed: %v", err)
	}

	log.Println("Seeding products...")
	for _, entry := range raw {
		p := entry.Normalize()
		if p.Name == "" {
			log.Printf("Skipping product without a name: %v", entry)
			continue
		}
		_, err := db.Exec(`
			INSERT INTO products (name, price, barcode, visible, quick_display, allow_decimal_qty, display_order)
			SELECT $1, $2, $3, $4, $5, $6, $7
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1);
		`, p.Name, p.Price, p.Barcode, p.Visible, p.QuickDisplay, p.AllowDecimalQty, p.DisplayOrder)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
		}
	}
}

func seedCashiers(db *sql.DB) {
	cashiers := []struct {
		Code       string
		Name       string
		Role       string
		LastActive string
		RequirePin bool
		PIN        string
		Order      int64
	}{
		{"linh", "Linh", "Trưởng ca", "08:05", true, "1234", 1},
		{"hoang", "Hoàng", "Thu ngân", "08:10", false, "", 2},
		{"an", "An", "Thu ngân", "Đang nghỉ", true, "5678", 3},
		{"vi", "Vi", "Thu ngân", "Hôm qua", false, "", 4},
	}

	log.Println("Seeding cashiers...")
	for _, c := range cashiers {
		var hash *string
		if c.PIN != "" {
			h, err := argon2id.CreateHash(c.PIN, argon2id.DefaultParams)
			if err != nil {
				log.Fatalf("Failed to hash pin for %s: %v", c.Code, err)
			}
			hash = &h
		}
		_, err := db.Exec(`
			INSERT INTO cashiers (code, name, role, last_active, require_pin, pin_hash, display_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (code) DO NOTHING;
		`, c.Code, c.Name, c.Role, c.LastActive, c.RequirePin, hash, c.Order)
		if err != nil {
			log.Printf("Failed to seed cashier %s: %v", c.Code, err)
		}
	}
}
