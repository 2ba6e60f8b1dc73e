package model

import (
	"fmt"
	"strings"
)

// CommentItem is one free-text commentary cell extracted from a spreadsheet.
// Items are immutable once extracted; RowContext carries the full source row
// (column name -> cell value) so findings can be attributed to an entity.
type CommentItem struct {
	Text       string            `json:"text"`
	Field      string            `json:"field"`                 // column the comment came from
	Sheet      string            `json:"sheet"`
	Row        int               `json:"row"`                   // 1-based data row
	RowContext map[string]string `json:"row_context,omitempty"`
}

// QuestionItem is one yes/no-style questionnaire answer.
type QuestionItem struct {
	Answer     string            `json:"answer"`
	Field      string            `json:"field"`
	Row        int               `json:"row"`
	RowContext map[string]string `json:"row_context,omitempty"`
}

// attributionKeys are checked in priority order when tying a comment to an entity.
var attributionKeys = []string{"Organization Name", "Deliverable", "Grant Number"}

// AttributedEntity resolves which entity a comment concerns by walking the
// row context keys in priority order, synthesizing "Row {n}" when none match.
func (c CommentItem) AttributedEntity() string {
	for _, key := range attributionKeys {
		if v := strings.TrimSpace(c.RowContext[key]); v != "" {
			return v
		}
	}
	return fmt.Sprintf("Row %d", c.Row)
}

// GroupKey returns the progress grouping key: the Deliverable column when
// present, the row number otherwise.
func (q QuestionItem) GroupKey() string {
	if v := strings.TrimSpace(q.RowContext["Deliverable"]); v != "" {
		return v
	}
	return fmt.Sprintf("Row %d", q.Row)
}

// IsAffirmative reports whether the answer counts toward completion.
func (q QuestionItem) IsAffirmative() bool {
	switch strings.ToLower(strings.TrimSpace(q.Answer)) {
	case "yes", "y", "true":
		return true
	default:
		return false
	}
}
