package main

import (
	"encoding/csv"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"rentledger/db/store"
)

// previewLimit caps how many accepted rows are echoed back after an upload.
const previewLimit = 50

// Payment handler functions

// @Summary Upload payment spreadsheet
// @Description Parse an .xlsx or .csv payment export, skip duplicates and store the rest
// @Tags payments
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet file (.xlsx or .csv)"
// @Success 200 {object} UploadResult "Ingestion result with preview"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/upload [post]
func uploadPayments(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	rows, err := readSheetRows(file, header.Filename)
	if err != nil {
		logg.Error().Err(err).Str("file", header.Filename).Msg("failed to read spreadsheet")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading spreadsheet file"})
		return
	}

	layout, transactions := extractSheet(rows, header.Filename)
	if len(transactions) == 0 {
		c.JSON(http.StatusOK, UploadResult{
			Success: true,
			Type:    string(layout),
			Preview: []RawTransaction{},
		})
		return
	}

	// Duplicate check runs against the years present in the batch, not the
	// whole table.
	years := batchYears(transactions)
	existing, err := dataStore.ListPaymentKeys(c.Request.Context(), years)
	if err != nil {
		logg.Error().Err(err).Msg("failed to load existing payment keys")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking for duplicates"})
		return
	}
	signatures := make([]string, 0, len(existing))
	for _, row := range existing {
		signatures = append(signatures, paymentRowToTransaction(row).Signature())
	}

	dedup := NewDeduplicator(signatures)
	accepted, skipped := dedup.Filter(transactions)

	inserted := 0
	if len(accepted) > 0 {
		rows := make([]store.PaymentRow, 0, len(accepted))
		for _, t := range accepted {
			rows = append(rows, transactionToPaymentRow(t))
		}
		inserted, err = dataStore.InsertPayments(c.Request.Context(), rows)
		if err != nil {
			logg.Error().Err(err).Int("rows", len(rows)).Msg("failed to insert payments")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error storing payments"})
			return
		}
	}

	preview := accepted
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	c.JSON(http.StatusOK, UploadResult{
		Success:        true,
		Type:           string(layout),
		Count:          inserted,
		Skipped:        skipped,
		TotalProcessed: len(transactions),
		Preview:        preview,
	})
}

// readSheetRows turns an uploaded file into a cell grid. Excel workbooks
// read the first sheet only; CSV files accept ragged rows.
func readSheetRows(file multipart.File, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		wb, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return wb.GetRows(wb.GetSheetName(0))
	default:
		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		return reader.ReadAll()
	}
}

// batchYears lists the distinct years present in a transaction batch.
func batchYears(transactions []RawTransaction) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, t := range transactions {
		if t.Year == 0 {
			continue
		}
		if _, ok := seen[t.Year]; !ok {
			seen[t.Year] = struct{}{}
			years = append(years, t.Year)
		}
	}
	return years
}

// @Summary Get payments
// @Description Retrieve stored payment rows, optionally filtered by year
// @Tags payments
// @Produce json
// @Param year query int false "Restrict to one year"
// @Success 200 {array} RawTransaction "Payment rows"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/payments [get]
func getPayments(c *gin.Context) {
	years, ok := parseYearParam(c)
	if !ok {
		return
	}

	rows, err := dataStore.ListPayments(c.Request.Context(), years)
	if err != nil {
		logg.Error().Err(err).Msg("failed to list payments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching payments"})
		return
	}

	payments := make([]RawTransaction, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, paymentRowToTransaction(row))
	}
	c.JSON(http.StatusOK, payments)
}

// @Summary Get available years
// @Description List the years that have payment data
// @Tags payments
// @Produce json
// @Success 200 {object} map[string]interface{} "Years, newest first"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/years [get]
func getYears(c *gin.Context) {
	years, err := dataStore.ListDistinctYears(c.Request.Context())
	if err != nil {
		logg.Error().Err(err).Msg("failed to list years")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching years"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// parseYearParam reads the optional year query parameter. A malformed value
// writes a 400 response and returns ok=false.
func parseYearParam(c *gin.Context) ([]int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return nil, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return nil, false
	}
	return []int{year}, true
}
