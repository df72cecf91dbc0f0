package repo

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store — pgx-репозиторий витрины: товары, заказы, промокоды.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }
