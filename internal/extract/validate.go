package extract

import (
	"fmt"
	"strings"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
)

// TriggerPhrase marks a chat message as a report candidate. Messages without
// it are ignored before any extraction work.
const TriggerPhrase = "summary of tips and vips"

func HasTrigger(text string) bool {
	return strings.Contains(strings.ToLower(text), TriggerPhrase)
}

// Rejection explains why an extraction result was not accepted.
type Rejection struct {
	MissingFields []domain.Field
}

func (r *Rejection) Reason() string {
	names := make([]string, 0, len(r.MissingFields))
	for _, field := range r.MissingFields {
		names = append(names, string(field))
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(names, ", "))
}

// Validate promotes an extraction result to a ValidatedReport. A report is
// accepted iff every required field has a value; optional money fields are
// filled with the zero-amount placeholder so downstream rows never carry an
// empty money cell. The caller still owns message identity and source link.
func Validate(fields domain.ExtractedFields, required []domain.Field) (*domain.ValidatedReport, *Rejection) {
	missing := make([]domain.Field, 0)
	for _, field := range required {
		if !fields.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &Rejection{MissingFields: missing}
	}

	promoted := fields.Clone()
	for _, field := range domain.MoneyFields {
		if !promoted.Has(field) {
			promoted[field] = domain.ZeroAmount
		}
	}
	return &domain.ValidatedReport{Fields: promoted}, nil
}
