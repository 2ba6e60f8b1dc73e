package model

// ColumnInfo summarizes one spreadsheet column across the data rows.
type ColumnInfo struct {
	Name       string `json:"name"`
	NonEmpty   int    `json:"non_empty"`
	YesNo      bool   `json:"yes_no"`     // every non-empty value is a yes/no style answer
	Commentary bool   `json:"commentary"` // average value length indicates free text
}

// FileInfo identifies the workbook an extraction came from.
type FileInfo struct {
	Name    string       `json:"name"`
	Sheets  []string     `json:"sheets,omitempty"`
	Rows    int          `json:"rows"` // data rows on the processed sheet
	Columns []ColumnInfo `json:"columns,omitempty"`
}

// Extraction holds everything pulled from one workbook. Items are read-only
// from the analyzer's point of view.
type Extraction struct {
	File      FileInfo       `json:"file"`
	Comments  []CommentItem  `json:"comments"`
	Questions []QuestionItem `json:"questions"`
}

// ItemCount reports how many analyzable items the extraction produced.
func (e Extraction) ItemCount() int {
	return len(e.Comments) + len(e.Questions)
}
