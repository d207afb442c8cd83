// Seed inserts a demo business with two employees and weekday availability
// so a local instance can take bookings immediately.
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		INSERT INTO businesses (id, name, phone_number, timezone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone_number) DO NOTHING`,
		uuid.New(), "Estudio Sol", "+5491155559999", "America/Argentina/Buenos_Aires",
	)
	if err != nil {
		log.Fatalf("insert business: %v", err)
	}

	var businessID uuid.UUID
	err = pool.QueryRow(ctx, `SELECT id FROM businesses WHERE phone_number = $1`, "+5491155559999").Scan(&businessID)
	if err != nil {
		log.Fatalf("lookup business: %v", err)
	}

	employees := []struct {
		name string
	}{
		{"María"},
		{"Carlos"},
	}
	for _, e := range employees {
		employeeID := uuid.New()
		_, err = pool.Exec(ctx, `
			INSERT INTO employees (id, business_id, name, active)
			VALUES ($1, $2, $3, TRUE)`,
			employeeID, businessID, e.name,
		)
		if err != nil {
			log.Fatalf("insert employee %s: %v", e.name, err)
		}

		// Monday through Friday, 09:00-13:00 and 14:00-18:00.
		for weekday := 1; weekday <= 5; weekday++ {
			for _, window := range [][2]int{{540, 780}, {840, 1080}} {
				_, err = pool.Exec(ctx, `
					INSERT INTO availability_rules (id, employee_id, weekday, start_min, end_min)
					VALUES ($1, $2, $3, $4, $5)`,
					uuid.New(), employeeID, weekday, window[0], window[1],
				)
				if err != nil {
					log.Fatalf("insert availability: %v", err)
				}
			}
		}
	}

	log.Printf("seeded business %s with %d employees", businessID, len(employees))
}
