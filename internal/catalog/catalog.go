// internal/catalog/catalog.go

// Package catalog serves the known site and area names used for slot
// matching. Values come from the assets table and are cached in Redis;
// any failure degrades to empty lists so a reply is never blocked on
// the catalog.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"mat-bot/internal/common/database"
	"mat-bot/internal/common/logger"
)

const (
	sitesKey = "catalog:sites"
	areasKey = "catalog:areas"
)

type Loader struct {
	db     *sql.DB
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewLoader(db *sql.DB, rdb *database.RedisClient, ttl time.Duration, log logger.Logger) *Loader {
	return &Loader{db: db, redis: rdb, ttl: ttl, logger: log}
}

// KnownValues returns the distinct sites and areas.
func (l *Loader) KnownValues(ctx context.Context) ([]string, []string) {
	return l.lookup(ctx, sitesKey, "site"), l.lookup(ctx, areasKey, "area")
}

func (l *Loader) lookup(ctx context.Context, key, column string) []string {
	if l.redis != nil {
		if raw, err := l.redis.Get(ctx, key); err == nil {
			var values []string
			if err := json.Unmarshal([]byte(raw), &values); err == nil {
				return values
			}
		}
	}

	values, err := l.distinct(ctx, column)
	if err != nil {
		l.logger.Warn("catalog query failed", map[string]interface{}{
			"column": column,
			"error":  err.Error(),
		})
		return nil
	}

	if l.redis != nil {
		raw, err := json.Marshal(values)
		if err == nil {
			if err := l.redis.Set(ctx, key, raw, l.ttl); err != nil {
				l.logger.Warn("catalog cache write failed", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
	}
	return values
}

func (l *Loader) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM assets WHERE %s IS NOT NULL ORDER BY 1", column, column)

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
