package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"bitbucket.org/mmdatafocus/resto_backend/models"
	"bitbucket.org/mmdatafocus/resto_backend/models/ingest"
	"bitbucket.org/mmdatafocus/resto_backend/utils"
)

func main() {
	file := flag.String("file", "", "Path to the xlsx report to import (required).")
	mode := flag.String("mode", "daily", "Import mode: daily (one aggregate row per date) or waiters (per-waiter shift rows).")
	cutover := flag.String("cutover", "", "Optional: till consolidation date (YYYY-MM-DD). Rows before it count only for the register given by -register.")
	register := flag.Int("register", 1, "Register/till id that counts before the cutover date.")
	flag.Parse()

	if strings.TrimSpace(*file) == "" {
		fmt.Fprintln(os.Stderr, "-file is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx := utils.SetActorNameInContext(context.Background(), "ImportStats")
	config.ConnectDatabase()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", *file, err)
		os.Exit(1)
	}
	defer f.Close()

	var result *ingest.ImportResult
	switch *mode {
	case "daily":
		opts := ingest.DailyImportOptions{}
		if strings.TrimSpace(*cutover) != "" {
			opts.Register = &ingest.RegisterPolicy{Cutover: strings.TrimSpace(*cutover), Register: *register}
		}
		result, err = ingest.ImportDailyWorkbook(ctx, db, f, opts)
	case "waiters":
		result, err = ingest.ImportWaiterWorkbook(ctx, db, f, nil)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q (want daily or waiters)\n", *mode)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d rows across %d dates (%d rows skipped)\n",
		result.RowsImported, result.DatesAffected, result.RowsSkipped)
	if len(result.UnresolvedFields) > 0 {
		fields := make([]string, 0, len(result.UnresolvedFields))
		for _, f := range result.UnresolvedFields {
			fields = append(fields, string(f))
		}
		fmt.Printf("Columns not found (read as 0): %s\n", strings.Join(fields, ", "))
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "write failed for %s: %s\n", failure.Key, failure.Reason)
	}
	if len(result.Failures) > 0 {
		os.Exit(1)
	}
}
