package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ashendes/food-details/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS foods (
	id          BIGINT PRIMARY KEY,
	name        VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price       NUMERIC(10, 2),
	image_url   VARCHAR(500) NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS food_extras (
	id       BIGINT NOT NULL,
	food_id  BIGINT NOT NULL REFERENCES foods(id) ON DELETE CASCADE,
	name     VARCHAR(255) NOT NULL,
	value    NUMERIC(10, 2),
	quantity INTEGER,
	position INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (food_id, id)
);
`

// ConnectPostgres opens a pool and verifies it with a ping
func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	return pool, nil
}

// PostgresRepository reads foods from PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a repository on top of a pool
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the catalog tables when missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// Seed inserts foods when the catalog is empty
func (r *PostgresRepository) Seed(ctx context.Context, foods []models.FoodItem) error {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM foods`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count foods: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, food := range foods {
		if _, err := tx.Exec(ctx, `
			INSERT INTO foods (id, name, description, price, image_url)
			VALUES ($1, $2, $3, $4, $5)
		`, food.ID, food.Name, food.Description, nullableNumber(food.Price), food.ImageURL); err != nil {
			return fmt.Errorf("failed to insert food %d: %w", food.ID, err)
		}

		for position, extra := range food.Extras {
			if _, err := tx.Exec(ctx, `
				INSERT INTO food_extras (id, food_id, name, value, quantity, position)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, extra.ID, food.ID, extra.Name, nullableNumber(extra.Value), nullableQuantity(extra.Quantity), position); err != nil {
				return fmt.Errorf("failed to insert extra %d of food %d: %w", extra.ID, food.ID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	log.WithField("foods", len(foods)).Info("Catalog seeded")
	return nil
}

// GetFood returns the food with the given id and its extras in display order
func (r *PostgresRepository) GetFood(ctx context.Context, id int64) (*models.FoodItem, error) {
	var (
		food  models.FoodItem
		price *float64
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, price::float8, image_url
		FROM foods
		WHERE id = $1
	`, id).Scan(&food.ID, &food.Name, &food.Description, &price, &food.ImageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("failed to query food %d: %w", id, err)
	}
	food.Price = numberOrNaN(price)

	extras, err := r.extras(ctx, id)
	if err != nil {
		return nil, err
	}
	food.Extras = extras

	return &food, nil
}

// ListFoods returns all foods ordered by id
func (r *PostgresRepository) ListFoods(ctx context.Context) ([]models.FoodItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM foods ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan food ids: %w", err)
	}

	foods := make([]models.FoodItem, 0, len(ids))
	for _, id := range ids {
		food, err := r.GetFood(ctx, id)
		if err != nil {
			return nil, err
		}
		foods = append(foods, *food)
	}
	return foods, nil
}

func (r *PostgresRepository) extras(ctx context.Context, foodID int64) ([]models.Extra, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, value::float8, quantity
		FROM food_extras
		WHERE food_id = $1
		ORDER BY position, id
	`, foodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query extras of food %d: %w", foodID, err)
	}
	defer rows.Close()

	extras := []models.Extra{}
	for rows.Next() {
		var (
			extra    models.Extra
			value    *float64
			quantity *int64
		)
		if err := rows.Scan(&extra.ID, &extra.Name, &value, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan extra: %w", err)
		}
		extra.Value = numberOrNaN(value)
		if quantity != nil {
			extra.Quantity = models.Number(*quantity)
		}
		extras = append(extras, extra)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read extras of food %d: %w", foodID, err)
	}

	return extras, nil
}

// numberOrNaN maps SQL NULL to an invalid number
func numberOrNaN(v *float64) models.Number {
	if v == nil {
		return models.Number(math.NaN())
	}
	return models.Number(*v)
}

func nullableNumber(n models.Number) *float64 {
	if !n.IsValid() {
		return nil
	}
	f := n.Float64()
	return &f
}

func nullableQuantity(n models.Number) *int64 {
	if !n.IsValid() {
		return nil
	}
	q := int64(n.Float64())
	return &q
}
