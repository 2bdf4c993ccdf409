// cmd/tools/importer/main.go
//
// Loads assets.csv and work_orders.csv into PostgreSQL, recreating both
// tables. Column order in the files does not matter; missing
// mttr_hours/cost_total columns are derived the way the KPI queries
// expect them.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"mat-bot/internal/common/config"
	"mat-bot/internal/common/database"
	"mat-bot/internal/common/logger"
	"mat-bot/internal/kpi"
)

var assetColumns = []string{"asset_id", "name", "site", "area"}

var workOrderColumns = []string{
	"wo_id", "asset_id", "type", "status", "technician",
	"opened_at", "closed_at", "due_date",
	"labor_hours", "mttr_hours", "downtime_hours",
	"cost_parts", "cost_labor", "cost_total",
}

func main() {
	assetsPath := flag.String("assets", "data/assets.csv", "path to the assets CSV")
	workOrdersPath := flag.String("workorders", "data/work_orders.csv", "path to the work orders CSV")
	configPath := flag.String("config", "", "config file path (default: standard lookup)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := pg.Ping(ctx); err != nil {
		fmt.Printf("Error pinging postgres: %v\n", err)
		os.Exit(1)
	}

	if err := recreateSchema(ctx, pg.DB); err != nil {
		fmt.Printf("Error recreating schema: %v\n", err)
		os.Exit(1)
	}

	assetCount, err := importAssets(ctx, pg.DB, *assetsPath)
	if err != nil {
		fmt.Printf("Error importing assets: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d assets from %s\n", assetCount, *assetsPath)

	orderCount, err := importWorkOrders(ctx, pg.DB, *workOrdersPath)
	if err != nil {
		fmt.Printf("Error importing work orders: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d work orders from %s\n", orderCount, *workOrdersPath)
}

// recreateSchema drops both tables and builds them fresh through the
// same DDL the service runs at startup.
func recreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS work_orders",
		"DROP TABLE IF EXISTS assets",
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return kpi.NewStore(db, logger.NewNoOpLogger()).EnsureSchema(ctx)
}

type csvTable struct {
	header map[string]int
	rows   [][]string
}

func readCSV(path string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}
	return &csvTable{header: header, rows: records[1:]}, nil
}

func (t *csvTable) has(column string) bool {
	_, ok := t.header[column]
	return ok
}

func (t *csvTable) get(row []string, column string) string {
	i, ok := t.header[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func importAssets(ctx context.Context, db *sql.DB, path string) (int, error) {
	table, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, required := range []string{"asset_id", "name"} {
		if !table.has(required) {
			return 0, fmt.Errorf("%s is missing the %s column", path, required)
		}
	}

	return copyRows(ctx, db, "assets", assetColumns, table.rows, func(row []string) ([]interface{}, error) {
		return []interface{}{
			table.get(row, "asset_id"),
			table.get(row, "name"),
			nullString(table.get(row, "site")),
			nullString(table.get(row, "area")),
		}, nil
	})
}

func importWorkOrders(ctx context.Context, db *sql.DB, path string) (int, error) {
	table, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	for _, required := range []string{"wo_id", "asset_id"} {
		if !table.has(required) {
			return 0, fmt.Errorf("%s is missing the %s column", path, required)
		}
	}

	// Fallbacks mirror the KPI expectations: files without an
	// mttr_hours column use labor_hours, files without cost_total get
	// cost_parts + cost_labor.
	deriveMTTR := !table.has("mttr_hours") && table.has("labor_hours")
	deriveTotal := !table.has("cost_total")

	return copyRows(ctx, db, "work_orders", workOrderColumns, table.rows, func(row []string) ([]interface{}, error) {
		labor, err := nullFloat(table.get(row, "labor_hours"))
		if err != nil {
			return nil, fmt.Errorf("labor_hours: %w", err)
		}

		mttr, err := nullFloat(table.get(row, "mttr_hours"))
		if err != nil {
			return nil, fmt.Errorf("mttr_hours: %w", err)
		}
		if deriveMTTR {
			mttr = labor
		}

		downtime, err := nullFloat(table.get(row, "downtime_hours"))
		if err != nil {
			return nil, fmt.Errorf("downtime_hours: %w", err)
		}
		parts, err := nullFloat(table.get(row, "cost_parts"))
		if err != nil {
			return nil, fmt.Errorf("cost_parts: %w", err)
		}
		laborCost, err := nullFloat(table.get(row, "cost_labor"))
		if err != nil {
			return nil, fmt.Errorf("cost_labor: %w", err)
		}

		total, err := nullFloat(table.get(row, "cost_total"))
		if err != nil {
			return nil, fmt.Errorf("cost_total: %w", err)
		}
		if deriveTotal {
			total = sumFloats(parts, laborCost)
		}

		return []interface{}{
			table.get(row, "wo_id"),
			table.get(row, "asset_id"),
			nullString(table.get(row, "type")),
			nullString(table.get(row, "status")),
			nullString(table.get(row, "technician")),
			nullString(table.get(row, "opened_at")),
			nullString(table.get(row, "closed_at")),
			nullString(table.get(row, "due_date")),
			labor,
			mttr,
			downtime,
			parts,
			laborCost,
			total,
		}, nil
	})
}

// copyRows bulk-loads rows inside one transaction with COPY.
func copyRows(ctx context.Context, db *sql.DB, tableName string, columns []string, rows [][]string,
	convert func(row []string) ([]interface{}, error)) (int, error) {

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(tableName, columns...))
	if err != nil {
		return 0, err
	}

	count := 0
	for i, row := range rows {
		values, err := convert(row)
		if err != nil {
			stmt.Close()
			return 0, fmt.Errorf("%s row %d: %w", tableName, i+2, err)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("%s row %d: %w", tableName, i+2, err)
		}
		count++
	}

	// Flush the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, err
	}
	if err := stmt.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(s string) (interface{}, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// sumFloats adds two nullable floats, keeping NULL when both are.
func sumFloats(a, b interface{}) interface{} {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if !aok && !bok {
		return nil
	}
	var sum float64
	if aok {
		sum += af
	}
	if bok {
		sum += bf
	}
	return sum
}
