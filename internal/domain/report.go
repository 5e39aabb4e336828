package domain

import (
	"fmt"
	"strings"
	"time"
)

// Field names one extractable data point of a shift report.
type Field string

const (
	FieldName       Field = "name"
	FieldDate       Field = "report_date"
	FieldShiftLabel Field = "shift_label"
	FieldShiftHours Field = "shift_duration_hours"
	FieldCreator    Field = "creator_handle"
	FieldVIPTips    Field = "vip_tip_amounts"
	FieldPPVs       Field = "ppv_amounts"
	FieldGrossSale  Field = "gross_sale_amount"
	FieldNetSale    Field = "net_sale_amount"
	FieldBonus      Field = "bonus_amount"
	FieldSourceLink Field = "source_link"
)

// ColumnOrder is the fixed cell order expected by the row store.
var ColumnOrder = []Field{
	FieldName,
	FieldDate,
	FieldShiftLabel,
	FieldShiftHours,
	FieldCreator,
	FieldVIPTips,
	FieldPPVs,
	FieldGrossSale,
	FieldNetSale,
	FieldBonus,
	FieldSourceLink,
}

// MoneyFields default to ZeroAmount when a report omits them.
var MoneyFields = []Field{
	FieldVIPTips,
	FieldPPVs,
	FieldGrossSale,
	FieldNetSale,
	FieldBonus,
}

const ZeroAmount = "$0"

// DefaultRequiredFields is the acceptance bar for a report. The set changed
// across revisions of the original sheet workflow, so it lives here as one
// constant instead of being implied by individual extraction rules.
var DefaultRequiredFields = []Field{
	FieldName,
	FieldDate,
	FieldCreator,
	FieldGrossSale,
	FieldNetSale,
}

// ParseRequiredFields parses a comma-separated field-name override. Unknown
// names are ignored; an empty result falls back to DefaultRequiredFields.
func ParseRequiredFields(raw string) []Field {
	known := make(map[Field]bool, len(ColumnOrder))
	for _, field := range ColumnOrder {
		known[field] = true
	}

	required := make([]Field, 0)
	for _, part := range strings.Split(raw, ",") {
		field := Field(strings.TrimSpace(part))
		if known[field] {
			required = append(required, field)
		}
	}
	if len(required) == 0 {
		return DefaultRequiredFields
	}
	return required
}

// RawMessage is one inbound chat message before any parsing. Ephemeral, never
// persisted.
type RawMessage struct {
	ChatID    int64
	MessageID int64
	Text      string
}

// SourceLink builds the permalink back to the originating message.
func (m RawMessage) SourceLink() string {
	return fmt.Sprintf("https://t.me/c/%d/%d", m.ChatID, m.MessageID)
}

// ExtractedFields maps field names to values recovered from a report text.
// A missing key means the field was absent or unparseable.
type ExtractedFields map[Field]string

func (f ExtractedFields) Has(field Field) bool {
	value, ok := f[field]
	return ok && value != ""
}

func (f ExtractedFields) Clone() ExtractedFields {
	clone := make(ExtractedFields, len(f))
	for field, value := range f {
		clone[field] = value
	}
	return clone
}

// Row renders the fields as store cells in ColumnOrder. Absent fields render
// as empty cells.
func (f ExtractedFields) Row() []string {
	row := make([]string, 0, len(ColumnOrder))
	for _, field := range ColumnOrder {
		row = append(row, f[field])
	}
	return row
}

// ValidatedReport is an extraction result promoted past validation: every
// required field is populated and optional money fields are zero-filled. It
// owns its field copy and keeps the message identity for acknowledgement.
type ValidatedReport struct {
	Fields    ExtractedFields
	ChatID    int64
	MessageID int64
}

func (r *ValidatedReport) Row() []string {
	return r.Fields.Row()
}

// ReportEnvelope is the queue entry wrapping a validated report. JSON tags are
// the wire format used by the Redis-backed queue.
type ReportEnvelope struct {
	ID         string          `json:"id"`
	ChatID     int64           `json:"chat_id"`
	MessageID  int64           `json:"message_id"`
	Fields     ExtractedFields `json:"fields"`
	Attempt    int             `json:"attempt"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

func (e ReportEnvelope) Row() []string {
	return e.Fields.Row()
}
