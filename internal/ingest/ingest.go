// Package ingest pulls analyzable items out of xlsx workbooks. Cells are
// classified per row in column order: yes/no style values become questionnaire
// answers, longer free text becomes commentary, everything else is kept only
// as row context for attribution.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetlens/internal/model"
)

// commentMinLength is the strict lower bound: a trimmed cell must be longer
// than this to count as commentary.
const commentMinLength = 20

// answerValues are the cell values treated as questionnaire answers. The
// check runs before the length check, so a cell is never both.
var answerValues = map[string]bool{
	"yes": true, "no": true,
	"y": true, "n": true,
	"true": true, "false": true,
}

// yesNoColumnValues is the broader set used for column summaries, where
// numeric booleans also indicate a yes/no column.
var yesNoColumnValues = map[string]bool{
	"yes": true, "no": true,
	"y": true, "n": true,
	"true": true, "false": true,
	"1": true, "0": true,
}

// Extractor reads workbooks and produces extractions for analysis.
type Extractor struct{}

// NewExtractor creates a new workbook extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFile opens the workbook at path and extracts its first sheet.
func (e *Extractor) ExtractFile(path string) (*model.Extraction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	return e.extract(f, filepath.Base(path))
}

// ExtractReader extracts from workbook bytes, using name for attribution.
func (e *Extractor) ExtractReader(r io.Reader, name string) (*model.Extraction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	return e.extract(f, name)
}

func (e *Extractor) extract(f *excelize.File, name string) (*model.Extraction, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", name)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	extraction := &model.Extraction{
		File: model.FileInfo{Name: name, Sheets: sheets},
	}
	if len(rows) == 0 {
		return extraction, nil
	}

	headers := headerNames(rows[0])
	stats := newColumnStats(headers)

	for i, row := range rows[1:] {
		cells := trimRow(row, len(headers))
		if isEmptyRow(cells) {
			continue
		}
		extraction.File.Rows++
		stats.observe(cells)

		// Data row numbers are 1-based and sheet-relative, so a dropped
		// blank row still advances the numbering.
		rowNum := i + 1
		context := rowContext(headers, cells)

		for j, value := range cells {
			if value == "" {
				continue
			}
			if answerValues[strings.ToLower(value)] {
				extraction.Questions = append(extraction.Questions, model.QuestionItem{
					Answer:     value,
					Field:      headers[j],
					Row:        rowNum,
					RowContext: context,
				})
			} else if len(value) > commentMinLength {
				extraction.Comments = append(extraction.Comments, model.CommentItem{
					Text:       value,
					Field:      headers[j],
					Sheet:      sheet,
					Row:        rowNum,
					RowContext: context,
				})
			}
		}
	}

	extraction.File.Columns = stats.summarize(extraction.File.Rows)
	return extraction, nil
}

// headerNames trims the header row, synthesizing a name for blank cells so
// every column stays addressable.
func headerNames(row []string) []string {
	headers := make([]string, len(row))
	for i, cell := range row {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		headers[i] = name
	}
	return headers
}

// trimRow pads a ragged row out to the header width and trims every cell.
func trimRow(row []string, width int) []string {
	cells := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		cells[i] = strings.TrimSpace(row[i])
	}
	return cells
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// rowContext maps column names to the row's non-empty values.
func rowContext(headers, cells []string) map[string]string {
	context := make(map[string]string, len(headers))
	for i, value := range cells {
		if value != "" {
			context[headers[i]] = value
		}
	}
	return context
}

// columnStats accumulates per-column counts while rows stream by.
type columnStats struct {
	headers     []string
	nonEmpty    []int
	totalLength []int
	allYesNo    []bool
}

func newColumnStats(headers []string) *columnStats {
	s := &columnStats{
		headers:     headers,
		nonEmpty:    make([]int, len(headers)),
		totalLength: make([]int, len(headers)),
		allYesNo:    make([]bool, len(headers)),
	}
	for i := range s.allYesNo {
		s.allYesNo[i] = true
	}
	return s
}

func (s *columnStats) observe(cells []string) {
	for i, value := range cells {
		s.totalLength[i] += len(value)
		if value == "" {
			continue
		}
		s.nonEmpty[i]++
		if !yesNoColumnValues[strings.ToLower(value)] {
			s.allYesNo[i] = false
		}
	}
}

// summarize drops columns that never held a value and flags the rest.
// Commentary detection uses the average length over all kept rows, so a
// sparsely filled column of long notes still registers.
func (s *columnStats) summarize(rowCount int) []model.ColumnInfo {
	var columns []model.ColumnInfo
	for i, name := range s.headers {
		if s.nonEmpty[i] == 0 {
			continue
		}
		avgLength := 0
		if rowCount > 0 {
			avgLength = s.totalLength[i] / rowCount
		}
		columns = append(columns, model.ColumnInfo{
			Name:       name,
			NonEmpty:   s.nonEmpty[i],
			YesNo:      s.allYesNo[i],
			Commentary: avgLength > commentMinLength,
		})
	}
	return columns
}
