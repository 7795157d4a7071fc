package game

import (
	"sort"

	"solo-trivia/internal/domain"
)

// Ledger keeps one result row per resolved question. Recording a question
// again replaces its row.
type Ledger struct {
	rows map[int]domain.ResultRow
}

// NewLedger seeds a ledger from persisted rows; later rows win.
func NewLedger(rows []domain.ResultRow) *Ledger {
	l := &Ledger{rows: make(map[int]domain.ResultRow, len(rows))}
	for _, row := range rows {
		l.Record(row)
	}
	return l
}

// Record stores row under its question index.
func (l *Ledger) Record(row domain.ResultRow) {
	if row.Correct != nil {
		correct := *row.Correct
		row.Correct = &correct
	}
	l.rows[row.Index] = row
}

// Rows returns a fresh slice ordered by question index.
func (l *Ledger) Rows() []domain.ResultRow {
	out := make([]domain.ResultRow, 0, len(l.rows))
	for _, row := range l.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})
	return out
}

// Len returns the number of rows.
func (l *Ledger) Len() int {
	return len(l.rows)
}

// Clear drops every row.
func (l *Ledger) Clear() {
	l.rows = make(map[int]domain.ResultRow)
}

func boolPtr(v bool) *bool {
	return &v
}
