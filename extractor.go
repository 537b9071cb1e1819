package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Spreadsheet extraction. Payment exports come in two layouts, neither with
// a fixed schema, so layout is detected from the cells and column roles are
// discovered from header text rather than assumed positions.

type sheetLayout string

const (
	layoutBlocks  sheetLayout = "sage_report_blocks"
	layoutTabular sheetLayout = "tabular"
)

// rowExtractor converts a raw grid of cells into normalized transactions.
type rowExtractor interface {
	Extract(rows [][]string, source string) []RawTransaction
}

// detectLayout classifies a sheet. Block exports carry "A/C:" and "Name:"
// labels somewhere on the same row; anything else is treated as tabular.
func detectLayout(rows [][]string) sheetLayout {
	for _, row := range rows {
		var hasAc, hasName bool
		for _, cell := range row {
			lower := strings.ToLower(cell)
			if strings.Contains(lower, "a/c:") {
				hasAc = true
			}
			if strings.Contains(lower, "name:") {
				hasName = true
			}
		}
		if hasAc && hasName {
			return layoutBlocks
		}
	}
	return layoutTabular
}

// extractSheet detects the layout and runs the matching extractor.
func extractSheet(rows [][]string, source string) (sheetLayout, []RawTransaction) {
	layout := detectLayout(rows)
	var ex rowExtractor
	switch layout {
	case layoutBlocks:
		ex = blockExtractor{}
	default:
		ex = tabularExtractor{}
	}
	return layout, ex.Extract(rows, source)
}

// blockExtractor handles per-tenant report blocks: an "A/C: x Name: y" row
// opens a block, the next row mentioning a date plus an amount-like column
// is that block's header, and "Total:" closes it.
type blockExtractor struct{}

func (blockExtractor) Extract(rows [][]string, source string) []RawTransaction {
	var out []RawTransaction

	var currentAc, currentName string
	headerFound := false
	idxDate, idxAmount, idxRef, idxType, idxDetails, idxNo := -1, -1, -1, -1, -1, -1

	for _, raw := range rows {
		row := trimCells(raw)
		lower := lowerCells(row)

		if acPos, namePos := indexOfCell(lower, "a/c:"), indexOfCell(lower, "name:"); acPos != -1 && namePos != -1 {
			currentAc = cellAt(row, acPos+1)
			currentName = cellAt(row, namePos+1)
			headerFound = false
			continue
		}

		if !headerFound {
			if indexOfCell(lower, "date") == -1 {
				continue
			}
			idxAmount = indexOfCell(lower, "amount")
			if idxAmount == -1 {
				idxAmount = indexOfCell(lower, "gross")
			}
			if idxAmount == -1 {
				idxAmount = indexOfCell(lower, "outstanding")
			}
			if idxAmount == -1 {
				continue
			}
			idxDate = indexOfCell(lower, "date")
			idxRef = indexOfCell(lower, "ref")
			idxType = indexOfCell(lower, "type")
			idxDetails = indexOfCell(lower, "details")
			idxNo = indexOfCell(lower, "no")
			headerFound = true
			continue
		}

		if currentAc == "" {
			continue
		}
		if indexOfCell(lower, "total:") != -1 {
			headerFound = false
			continue
		}
		if cellAt(row, idxDate) == "" && cellAt(row, idxAmount) == "" {
			continue
		}

		date := parseCellDate(cellAt(row, idxDate))
		amount := cleanAmount(cellAt(row, idxAmount)).Abs()
		if date == nil && amount.IsZero() {
			continue
		}

		out = append(out, newRawTransaction(rawRowFields{
			roomCode:      currentAc,
			tenantName:    currentName,
			date:          date,
			amount:        amount,
			reference:     cellAt(row, idxRef),
			txType:        cellAt(row, idxType),
			details:       cellAt(row, idxDetails),
			transactionNo: cellAt(row, idxNo),
			raw:           row,
			source:        source,
		}))
	}
	return out
}

// tabularExtractor handles flat exports: the header row is hunted within the
// first 20 rows and column roles are assigned by substring match, first
// match winning per role.
type tabularExtractor struct{}

func (tabularExtractor) Extract(rows [][]string, source string) []RawTransaction {
	if len(rows) == 0 {
		return nil
	}
	headerIndex := 0
	limit := len(rows)
	if limit > 20 {
		limit = 20
	}
	for i := 0; i < limit; i++ {
		lower := lowerCells(trimCells(rows[i]))
		if indexOfCell(lower, "date") != -1 || indexOfCell(lower, "amount") != -1 ||
			indexOfCell(lower, "tenant") != -1 || indexOfCell(lower, "name") != -1 {
			headerIndex = i
			break
		}
	}

	headers := trimCells(rows[headerIndex])
	cols := map[string]int{}
	assign := func(role string, idx int) {
		if _, ok := cols[role]; !ok {
			cols[role] = idx
		}
	}
	for idx, h := range headers {
		lower := strings.ToLower(h)
		if lower == "" {
			continue
		}
		if strings.Contains(lower, "date") {
			assign("date", idx)
		}
		if strings.Contains(lower, "amount") || strings.Contains(lower, "gross") || strings.Contains(lower, "net") {
			assign("amount", idx)
		}
		if strings.Contains(lower, "tenant") || strings.Contains(lower, "name") {
			assign("name", idx)
		}
		if strings.Contains(lower, "room") || strings.Contains(lower, "code") {
			assign("room", idx)
		}
		if strings.Contains(lower, "ref") {
			assign("ref", idx)
		}
		if strings.Contains(lower, "type") {
			assign("type", idx)
		}
		if strings.Contains(lower, "detail") {
			assign("details", idx)
		}
		if strings.Contains(lower, "no") {
			assign("no", idx)
		}
	}
	colAt := func(role string) int {
		if idx, ok := cols[role]; ok {
			return idx
		}
		return -1
	}

	var out []RawTransaction
	for i := headerIndex + 1; i < len(rows); i++ {
		row := trimCells(rows[i])
		if len(row) == 0 {
			continue
		}
		date := parseCellDate(cellAt(row, colAt("date")))
		amount := cleanAmount(cellAt(row, colAt("amount"))).Abs()
		name := cellAt(row, colAt("name"))
		if date == nil && amount.IsZero() && name == "" {
			continue
		}

		out = append(out, newRawTransaction(rawRowFields{
			roomCode:      cellAt(row, colAt("room")),
			tenantName:    name,
			date:          date,
			amount:        amount,
			reference:     cellAt(row, colAt("ref")),
			txType:        cellAt(row, colAt("type")),
			details:       cellAt(row, colAt("details")),
			transactionNo: cellAt(row, colAt("no")),
			raw:           row,
			source:        source,
		}))
	}
	return out
}

type rawRowFields struct {
	roomCode      string
	tenantName    string
	date          *time.Time
	amount        decimal.Decimal
	reference     string
	txType        string
	details       string
	transactionNo string
	raw           []string
	source        string
}

func newRawTransaction(f rawRowFields) RawTransaction {
	tx := RawTransaction{
		RoomCode:      f.roomCode,
		TenantName:    f.tenantName,
		Amount:        f.amount,
		TransactionNo: f.transactionNo,
		Date:          f.date,
		Reference:     f.reference,
		Type:          f.txType,
		Details:       f.details,
		Source:        f.source,
		Raw:           f.raw,
	}
	if f.date != nil {
		tx.Year, tx.WeekNumber = isoWeekOf(*f.date)
		tx.PeriodMonth = weekToMonthCode(tx.Year, tx.WeekNumber)
	}
	return tx
}

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// cleanAmount strips everything except digits, dot and minus before parsing.
// Unparseable values become zero; the row is still usable.
func cleanAmount(s string) decimal.Decimal {
	cleaned := nonNumericRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// excelEpochOffset converts Excel serial day numbers to the Unix epoch
// (serial 25569 = 1970-01-01, includes the standard 2-day correction).
const excelEpochOffset = 25569

// parseCellDate tries ISO, DD/MM/YYYY and Excel serial-day formats, in that
// order. Unparseable dates become nil and leave ISO week/year at zero.
func parseCellDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		t = t.UTC()
		return &t
	}
	if parts := strings.Split(s, "/"); len(parts) == 3 {
		day, errD := strconv.Atoi(parts[0])
		month, errM := strconv.Atoi(parts[1])
		year, errY := strconv.Atoi(parts[2])
		if errD == nil && errM == nil && errY == nil && month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			return &t
		}
		return nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t := time.Unix(int64(serial-excelEpochOffset)*86400, 0).UTC()
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &t
	}
	return nil
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func lowerCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ToLower(c)
	}
	return out
}

func indexOfCell(cells []string, label string) int {
	for i, c := range cells {
		if c == label {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
