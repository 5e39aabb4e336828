package extract

import (
	"regexp"
	"strings"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
)

// Matcher recovers one field value from a raw report text. The boolean is
// false when the text carries no usable value for the field.
type Matcher func(text string) (string, bool)

// Rule is one named pattern in the extraction registry. Rules for the same
// field are tried in ascending Priority and the first match wins.
type Rule struct {
	Field    domain.Field
	Name     string
	Priority int
	Match    Matcher
}

var (
	nameRe       = regexp.MustCompile(`(?i)Summary of Tips and VIPs for\s*(.+)`)
	numericDate  = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
	longDate     = regexp.MustCompile(`(?i)\b((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s*\d{4})\b`)
	// The timezone suffix is uppercase-only and same-line so the label can
	// never swallow the start of the next report line.
	shiftLabelRe = regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?[AP]M[ \t]*-[ \t]*\d{1,2}(?::\d{2})?[AP]M(?:[ \t]+(?-i:[A-Z]{2,4}))?)`)
	shiftHoursRe = regexp.MustCompile(`(?i)Shift\s*\(\s*(\d+)\s*hours?\s*\)`)
	creatorRe    = regexp.MustCompile(`(?i)Creator\s*:\s*(.+)`)
	vipTipRe     = regexp.MustCompile(`(?i)\$\s*([0-9][0-9,]*)\s+TIP\s+from\s+@\w+`)
	ppvRe        = regexp.MustCompile(`(?i)\$\s*([0-9][0-9,]*)\s+PPV\s+PAID\s+(?:from\s+)?@\w+`)
	grossSaleRe  = regexp.MustCompile(`(?i)TOTAL\s+GROSS\s+SALE:\s*\$\s*([0-9][0-9,]*)`)
	netSaleRe    = regexp.MustCompile(`(?i)TOTAL\s+NET\s+SALE:\s*\$\s*([0-9][0-9,]*)`)
	bonusRe      = regexp.MustCompile(`(?i)BONUS:\s*\$\s*([0-9][0-9,]*)`)

	// Section labels that bound the creator handle so a one-line report does
	// not leak its totals into the handle value. Uppercase tokens at a word
	// start only: a handle like @vipgirl is not a section label.
	creatorBoundaryRe = regexp.MustCompile(`(?:^|\s)(VIP|PPV|TOTAL)`)
)

// rules is the active extraction registry, ordered field by field.
var rules = []Rule{
	{Field: domain.FieldName, Name: "name_after_summary_heading", Priority: 1, Match: lineCapture(nameRe)},
	{Field: domain.FieldDate, Name: "date_numeric", Priority: 1, Match: lineCapture(numericDate)},
	{Field: domain.FieldDate, Name: "date_long_form", Priority: 2, Match: lineCapture(longDate)},
	{Field: domain.FieldShiftLabel, Name: "shift_time_range", Priority: 1, Match: lineCapture(shiftLabelRe)},
	{Field: domain.FieldShiftHours, Name: "shift_hours_annotation", Priority: 1, Match: lineCapture(shiftHoursRe)},
	{Field: domain.FieldCreator, Name: "creator_label", Priority: 1, Match: boundedCapture(creatorRe, creatorBoundaryRe)},
	{Field: domain.FieldVIPTips, Name: "vip_tip_amounts", Priority: 1, Match: amountList(vipTipRe)},
	{Field: domain.FieldPPVs, Name: "ppv_amounts", Priority: 1, Match: amountList(ppvRe)},
	{Field: domain.FieldGrossSale, Name: "total_gross_sale", Priority: 1, Match: singleAmount(grossSaleRe)},
	{Field: domain.FieldNetSale, Name: "total_net_sale", Priority: 1, Match: singleAmount(netSaleRe)},
	{Field: domain.FieldBonus, Name: "bonus_amount", Priority: 1, Match: singleAmount(bonusRe)},
}

// Rules exposes the active registry for inspection and per-rule tests.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// lineCapture matches the first capture group and trims it.
func lineCapture(re *regexp.Regexp) Matcher {
	return func(text string) (string, bool) {
		match := re.FindStringSubmatch(text)
		if match == nil {
			return "", false
		}
		value := strings.TrimSpace(match[1])
		return value, value != ""
	}
}

// boundedCapture truncates the captured value at the first section label
// matched by boundary.
func boundedCapture(re, boundary *regexp.Regexp) Matcher {
	capture := lineCapture(re)
	return func(text string) (string, bool) {
		value, ok := capture(text)
		if !ok {
			return "", false
		}
		if loc := boundary.FindStringSubmatchIndex(value); loc != nil {
			// loc[2] is where the label token itself starts.
			value = strings.TrimSpace(value[:loc[2]])
		}
		return value, value != ""
	}
}

// amountList collects every matching amount in document order and joins them
// as one comma-separated value.
func amountList(re *regexp.Regexp) Matcher {
	return func(text string) (string, bool) {
		matches := re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			return "", false
		}
		amounts := make([]string, 0, len(matches))
		for _, match := range matches {
			amounts = append(amounts, normalizeAmount(match[1]))
		}
		return strings.Join(amounts, ", "), true
	}
}

func singleAmount(re *regexp.Regexp) Matcher {
	return func(text string) (string, bool) {
		match := re.FindStringSubmatch(text)
		if match == nil {
			return "", false
		}
		return normalizeAmount(match[1]), true
	}
}

// normalizeAmount strips thousands separators and renders the canonical
// $<digits> form.
func normalizeAmount(digits string) string {
	return "$" + strings.ReplaceAll(digits, ",", "")
}
