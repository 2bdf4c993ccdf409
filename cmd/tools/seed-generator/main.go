// cmd/tools/seed-generator/main.go
//
// Generates deterministic synthetic maintenance data: an assets CSV
// spread over plausible sites and areas, and a work orders CSV over the
// recent months with the technician roster, a PM/CM mix, statuses,
// durations, costs and downtime. The files feed the importer; the
// mttr_hours and cost_total columns are intentionally absent so the
// importer's fallbacks kick in.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"mat-bot/internal/nlu"
)

var sites = []string{"Planta Norte", "Planta Sur", "Planta Este"}

var areas = []string{"Producción", "Empaque", "Calidad", "Mantenimiento", "Bodega"}

var assetNames = []string{
	"Bomba centrífuga", "Compresor", "Banda transportadora", "Horno",
	"Motor eléctrico", "Torre de enfriamiento", "Caldera", "Empacadora",
}

var statuses = []string{"Abierta", "En Progreso", "Cerrada"}

func main() {
	outDir := flag.String("out", "data", "output directory")
	assetCount := flag.Int("assets", 24, "number of assets")
	orderCount := flag.Int("orders", 400, "number of work orders")
	months := flag.Int("months", 6, "how many months back orders spread over")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Printf("Error creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	now := time.Now().UTC().Truncate(24 * time.Hour)

	assetsPath := filepath.Join(*outDir, "assets.csv")
	if err := writeAssets(assetsPath, *assetCount, rng); err != nil {
		fmt.Printf("Error writing assets: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d assets to %s\n", *assetCount, assetsPath)

	ordersPath := filepath.Join(*outDir, "work_orders.csv")
	if err := writeWorkOrders(ordersPath, *orderCount, *assetCount, *months, now, rng); err != nil {
		fmt.Printf("Error writing work orders: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d work orders to %s\n", *orderCount, ordersPath)
}

func writeAssets(path string, count int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"asset_id", "name", "site", "area"}); err != nil {
		return err
	}
	for i := 1; i <= count; i++ {
		record := []string{
			fmt.Sprintf("A-%03d", i),
			fmt.Sprintf("%s %d", assetNames[rng.Intn(len(assetNames))], i),
			sites[rng.Intn(len(sites))],
			areas[rng.Intn(len(areas))],
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeWorkOrders(path string, count, assetCount, months int, now time.Time, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"wo_id", "asset_id", "type", "status", "technician",
		"opened_at", "closed_at", "due_date",
		"labor_hours", "downtime_hours", "cost_parts", "cost_labor",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	technicians := nlu.Technicians()
	windowHours := months * 30 * 24

	for i := 1; i <= count; i++ {
		orderType := "CM"
		if rng.Float64() < 0.3 {
			orderType = "PM"
		}

		status := pickStatus(rng)
		opened := now.Add(-time.Duration(rng.Intn(windowHours)) * time.Hour)
		labor := 0.5 + rng.Float64()*23.5

		closed := ""
		if status == "Cerrada" {
			wait := time.Duration(4+rng.Intn(68)) * time.Hour
			repair := time.Duration(labor*1.5*float64(time.Hour))
			closed = opened.Add(wait + repair).Format(time.RFC3339)
		}

		due := ""
		if orderType == "PM" {
			due = opened.AddDate(0, 0, 4+rng.Intn(7)).Format("2006-01-02")
		}

		downtime := 0.0
		if orderType == "CM" && rng.Float64() < 0.7 {
			downtime = rng.Float64() * 48
		} else if orderType == "PM" {
			downtime = rng.Float64() * 4
		}

		costParts := rng.Float64() * 2000
		costLabor := labor * (30 + rng.Float64()*20)

		record := []string{
			fmt.Sprintf("WO-%05d", i),
			fmt.Sprintf("A-%03d", 1+rng.Intn(assetCount)),
			orderType,
			status,
			technicians[rng.Intn(len(technicians))],
			opened.Format(time.RFC3339),
			closed,
			due,
			formatFloat(labor),
			formatFloat(downtime),
			formatFloat(costParts),
			formatFloat(costLabor),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// pickStatus skews toward closed orders so MTTR and MTBF queries have
// material to work with.
func pickStatus(rng *rand.Rand) string {
	r := rng.Float64()
	switch {
	case r < 0.2:
		return statuses[0]
	case r < 0.35:
		return statuses[1]
	default:
		return statuses[2]
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
