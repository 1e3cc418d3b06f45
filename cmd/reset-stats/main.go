package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"bitbucket.org/mmdatafocus/resto_backend/models"
	"bitbucket.org/mmdatafocus/resto_backend/utils"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func main() {
	all := flag.Bool("all", false, "Delete ALL data: daily stats, waiter stats, waiter directory, plans.")
	date := flag.String("date", "", "Delete one date (YYYY-MM-DD): daily row plus that date's waiter rows.")
	plan := flag.String("plan", "", "Delete one month plan (YYYY-MM). Defaults to the current month when given as 'current'.")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt.")
	flag.Parse()

	ctx := utils.SetActorNameInContext(context.Background(), "ResetStats")
	config.ConnectDatabase()
	config.ConnectRedis()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	switch {
	case *all:
		if !*yes && !confirm("Delete ALL data (daily stats, waiter stats, plans)?") {
			fmt.Println("Cancelled.")
			return
		}
		for _, table := range []string{"daily_stats", "waiter_stats", "waiters", "monthly_plans"} {
			if err := db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
				fmt.Fprintf(os.Stderr, "failed to clear %s: %v\n", table, err)
				os.Exit(1)
			}
		}
		_ = config.RemoveRedisKey("WaiterNames")
		fmt.Println("All data deleted.")

	case strings.TrimSpace(*date) != "":
		d := strings.TrimSpace(*date)
		// Same shape check the import pipeline uses: stored dates may be
		// calendar-invalid, and those rows must still be deletable.
		if !datePattern.MatchString(d) {
			fmt.Fprintf(os.Stderr, "invalid -date %q (want YYYY-MM-DD)\n", d)
			os.Exit(2)
		}
		if err := models.DeleteStatsForDate(ctx, d); err != nil {
			fmt.Fprintf(os.Stderr, "failed to delete %s: %v\n", d, err)
			os.Exit(1)
		}
		fmt.Printf("Data for %s deleted.\n", d)

	case strings.TrimSpace(*plan) != "":
		year, month, err := parsePlanMonth(strings.TrimSpace(*plan))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := models.DeleteMonthlyPlan(ctx, year, month); err != nil {
			fmt.Fprintf(os.Stderr, "failed to delete plan: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Plan for %04d-%02d deleted.\n", year, month)

	default:
		fmt.Fprintln(os.Stderr, "nothing to do: pass -all, -date or -plan")
		flag.Usage()
		os.Exit(2)
	}
}

func parsePlanMonth(s string) (int, int, error) {
	if s == "current" {
		now := time.Now()
		return now.Year(), int(now.Month()), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid -plan %q (want YYYY-MM or 'current')", s)
	}
	return t.Year(), int(t.Month()), nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s (y/n): ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(scanner.Text()), "y")
}
