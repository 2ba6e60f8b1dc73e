package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel grades the severity of a finding. Levels are ordinal so direct
// comparison works: "at least High" means level >= RiskHigh.
type RiskLevel int

const (
	RiskLow RiskLevel = iota + 1
	RiskMedium
	RiskHigh
	RiskCritical
)

// String returns the display label for the level.
func (l RiskLevel) String() string {
	switch l {
	case RiskCritical:
		return "Critical"
	case RiskHigh:
		return "High"
	case RiskMedium:
		return "Medium"
	case RiskLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// ParseRiskLevel maps a label back to its level, defaulting to Low.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return RiskCritical
	case "high":
		return RiskHigh
	case "medium":
		return RiskMedium
	default:
		return RiskLow
	}
}

// MarshalJSON renders the label rather than the ordinal so reports stay readable.
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts either the label or the ordinal form.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = ParseRiskLevel(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("risk level: %w", err)
	}
	*l = RiskLevel(n)
	return nil
}

// RiskFinding ties a comment classified above Low back to the entity it
// concerns. Mitigation is filled in a second pass; findings are immutable
// after assembly.
type RiskFinding struct {
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`          // source comment, possibly truncated
	Mitigation  string    `json:"mitigation,omitempty"`
	Entity      string    `json:"entity"`               // never empty, "Row {n}" fallback
	SourceField string    `json:"source_field,omitempty"`
	Sheet       string    `json:"sheet,omitempty"`
	Row         int       `json:"row,omitempty"`
}
