package pricing

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// DefaultSymbol is the currency prefix used when none is configured.
	DefaultSymbol = "₱"
	// DefaultLocale drives digit grouping when none is configured.
	DefaultLocale = "en-US"

	maxFractionDigits = 3
)

// Formatter renders money with a fixed currency prefix and locale grouping.
// Digits come from the decimal itself, so large totals print exactly.
type Formatter struct {
	symbol  string
	group   string
	decimal string
}

// NewFormatter builds a formatter. Unknown locales fall back to English.
func NewFormatter(symbol, locale string) Formatter {
	if strings.TrimSpace(symbol) == "" {
		symbol = DefaultSymbol
	}
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	group, dec := separators(message.NewPrinter(tag))
	return Formatter{symbol: symbol, group: group, decimal: dec}
}

// separators reads the locale's grouping and decimal marks off a sample
// rendering of 1234.5. Locales that do not group in threes keep the defaults.
func separators(p *message.Printer) (group, dec string) {
	sample := p.Sprintf("%v", number.Decimal(1234.5, number.MaxFractionDigits(1)))
	var marks []string
	for _, r := range sample {
		if !unicode.IsDigit(r) {
			marks = append(marks, string(r))
		}
	}
	if len(marks) != 2 {
		return ",", "."
	}
	return marks[0], marks[1]
}

// Format renders amount as e.g. ₱1,234.5.
func (f Formatter) Format(amount Money) string {
	symbol, group, dec := f.symbol, f.group, f.decimal
	if symbol == "" {
		symbol = DefaultSymbol
	}
	if group == "" || dec == "" {
		group, dec = ",", "."
	}

	digits := amount.Round(maxFractionDigits).String()
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	b.WriteString(symbol)
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(dec)
		b.WriteString(frac)
	}
	return b.String()
}
