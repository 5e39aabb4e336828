// Package extract recovers the fixed shift-report field set from free-form
// chat text and decides whether a result is complete enough to ingest.
package extract

import (
	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
)

// Extract runs every registry rule against the text. It never fails: fields
// whose rules all miss are simply absent from the result. Pure, safe for
// concurrent use.
func Extract(text string) domain.ExtractedFields {
	fields := make(domain.ExtractedFields)
	for _, rule := range rules {
		if fields.Has(rule.Field) {
			continue
		}
		if value, ok := rule.Match(text); ok {
			fields[rule.Field] = value
		}
	}
	return fields
}
