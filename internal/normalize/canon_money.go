package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/docintel/internal/corpus"
)

// moneyResult is the metadata bag §4.6.1 describes for a MONEY entity.
type moneyResult struct {
	amount    float64
	currency  string
	formatted string
}

var multipliers = map[string]float64{
	"thousand": 1e3,
	"k":        1e3,
	"million":  1e6,
	"m":        1e6,
	"billion":  1e9,
	"b":        1e9,
}

func normalizeMoney(text string, tables corpus.CanonTables) (moneyResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return moneyResult{}, fmt.Errorf("money: empty text")
	}
	symbol := trimmed[:1]
	currency, ok := tables.CurrencySymbols[symbol]
	if !ok {
		return moneyResult{}, fmt.Errorf("money: unrecognized currency symbol %q", symbol)
	}
	rest := strings.TrimSpace(trimmed[1:])

	multiplier := 1.0
	for suffix, factor := range multipliers {
		lower := strings.ToLower(rest)
		if strings.HasSuffix(lower, suffix) {
			rest = strings.TrimSpace(rest[:len(rest)-len(suffix)])
			multiplier = factor
			break
		}
	}

	numeric := strings.ReplaceAll(rest, ",", "")
	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return moneyResult{}, fmt.Errorf("money: non-numeric amount in %q", text)
	}

	amount := value * multiplier
	return moneyResult{
		amount:    amount,
		currency:  currency,
		formatted: fmt.Sprintf("%s%s", symbol, formatAmount(amount)),
	}, nil
}

// formatAmount renders a float with thousands separators and two decimal
// places, matching the grouped forms MONEY entities appear in source text.
func formatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := int64(v)
	frac := int64((v-float64(whole))*100 + 0.5)
	s := strconv.FormatInt(whole, 10)
	var grouped strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(c)
	}
	out := fmt.Sprintf("%s.%02d", grouped.String(), frac)
	if neg {
		out = "-" + out
	}
	return out
}
