package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number is an integer that also decodes from a numeric JSON string, as
// sent by HTML forms. Blank strings and null decode to zero.
type Number int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*n = 0
			return nil
		}
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*n = Number(v)
	return nil
}

// ptr returns nil for zero so optional columns stay NULL.
func (n Number) ptr() *int64 {
	if n == 0 {
		return nil
	}
	v := int64(n)
	return &v
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatPrice renders an amount with the currency symbol and Indian digit
// grouping (₹4,50,00,000). Unknown currencies are prefixed by their code.
func FormatPrice(amount int64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency) + " "
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + symbol + groupIndian(amount)
}

// groupIndian groups the last three digits, then pairs: 12,34,56,789.
func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// CompactPrice renders rupee amounts in crore, lakh or thousand units
// (₹4.5 Cr, ₹85 L, ₹45 K).
func CompactPrice(amount int64) string {
	switch {
	case amount >= 1_00_00_000:
		return "₹" + trimFloat(float64(amount)/1_00_00_000) + " Cr"
	case amount >= 1_00_000:
		return "₹" + trimFloat(float64(amount)/1_00_000) + " L"
	case amount >= 1_000:
		return "₹" + trimFloat(float64(amount)/1_000) + " K"
	}
	return "₹" + strconv.FormatInt(amount, 10)
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
