package main

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"bitbucket.org/mmdatafocus/resto_backend/models"
	"bitbucket.org/mmdatafocus/resto_backend/models/ingest"
	"bitbucket.org/mmdatafocus/resto_backend/models/reports"
	"bitbucket.org/mmdatafocus/resto_backend/utils"
	"github.com/gin-gonic/gin"
)

const maxImportSizeBytes int64 = 10 * 1024 * 1024

// addDayHandler records one manually entered day: a one-row import, same
// last-write-wins upsert the bulk pipeline uses.
func addDayHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewDailyStat
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		if err := models.UpsertDailyStat(c.Request.Context(), config.GetDB(), &input); err != nil {
			config.LogError(config.GetLogger(), "handlers.go", "addDayHandler", "UpsertDailyStat", input, err)
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func addWaiterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewWaiterStat
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		if err := models.AddWaiterStat(c.Request.Context(), &input); err != nil {
			config.LogError(config.GetLogger(), "handlers.go", "addWaiterHandler", "AddWaiterStat", input, err)
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func savePlanHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMonthlyPlan
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		if err := models.SaveMonthlyPlan(c.Request.Context(), &input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func getPlanHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, err := yearMonthFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		plan, err := models.GetMonthlyPlan(c.Request.Context(), year, month)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusOK, gin.H{"plan": nil})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"plan": plan.PlanValue})
	}
}

func monthStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, err := yearMonthFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		stats, err := models.GetDailyStatsForMonth(c.Request.Context(), fmt.Sprintf("%04d-%02d", year, month))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func monthSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, err := yearMonthFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		summary, err := reports.GetMonthSummary(c.Request.Context(), year, month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func weeklyRevenueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, err := yearMonthFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		weeks, err := reports.GetWeeklyRevenue(c.Request.Context(), year, month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, weeks)
	}
}

func yearOverYearHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, err := yearMonthFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cmp, err := reports.GetYearOverYear(c.Request.Context(), year, month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cmp)
	}
}

func waiterMetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, err := yearMonthFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		period := c.DefaultQuery("period", "week")
		metrics, err := reports.GetWaiterMetrics(c.Request.Context(), period, year, month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, metrics)
	}
}

func waiterNamesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := models.ListWaiterNames(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"names": names})
	}
}

// importDailyHandler feeds an uploaded xlsx through the daily ingestion
// pipeline. Optional form fields "cutover" (YYYY-MM-DD) and "register"
// configure the pre-consolidation till filter; without them every row counts.
func importDailyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "import.daily")
		defer span.End()

		reader, ok := openUpload(c)
		if !ok {
			return
		}
		defer reader.Close()

		opts := ingest.DailyImportOptions{}
		if cutover := strings.TrimSpace(c.PostForm("cutover")); cutover != "" {
			register := 1
			if v := strings.TrimSpace(c.PostForm("register")); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "register must be an integer"})
					return
				}
				register = n
			}
			opts.Register = &ingest.RegisterPolicy{Cutover: cutover, Register: register}
		}

		result, err := ingest.ImportDailyWorkbook(ctx, config.GetDB(), reader, opts)
		if err != nil {
			respondImportError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func importWaitersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "import.waiters")
		defer span.End()

		reader, ok := openUpload(c)
		if !ok {
			return
		}
		defer reader.Close()

		result, err := ingest.ImportWaiterWorkbook(ctx, config.GetDB(), reader, nil)
		if err != nil {
			respondImportError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func exportMonthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, err := yearMonthFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f, err := reports.BuildMonthWorkbook(c.Request.Context(), year, month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filename := fmt.Sprintf("stats-%04d-%02d.xlsx", year, month)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := f.Write(c.Writer); err != nil {
			config.LogError(config.GetLogger(), "handlers.go", "exportMonthHandler", "Write workbook", filename, err)
		}
	}
}

func deleteDayHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Param("date")
		if !isCanonicalDate(date) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		if err := models.DeleteStatsForDate(c.Request.Context(), date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type closeableReader interface {
	Read(p []byte) (int, error)
	Close() error
}

// openUpload fetches the multipart "file" field. Replies 400 itself on
// failure so handlers can just bail out.
func openUpload(c *gin.Context) (closeableReader, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return nil, false
	}
	if header.Size > maxImportSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return f, true
}

// respondImportError maps the two fatal pipeline outcomes to responses; the
// missing-column case carries the observed header list for display.
func respondImportError(c *gin.Context, err error) {
	var missing *ingest.MissingColumnError
	if errors.As(err, &missing) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "required column not found",
			"field":   missing.Field,
			"headers": missing.Headers,
		})
		return
	}
	if errors.Is(err, ingest.ErrUnparseableFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	config.LogError(config.GetLogger(), "handlers.go", "respondImportError", "import", nil, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// yearMonthFromQuery reads ?year=&month=, defaulting to the current month.
func yearMonthFromQuery(c *gin.Context) (int, int, error) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(c.Query("year")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = n
	}
	if v := strings.TrimSpace(c.Query("month")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = n
	}
	return year, month, nil
}

// canonicalDatePattern matches what the import pipeline stores, including
// calendar-invalid dates it deliberately preserves; anything storable must be
// deletable.
var canonicalDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func isCanonicalDate(s string) bool {
	return canonicalDatePattern.MatchString(s)
}
