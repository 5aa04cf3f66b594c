package property

import "testing"

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		want     string
	}{
		{0, "INR", "₹0"},
		{999, "INR", "₹999"},
		{1000, "INR", "₹1,000"},
		{45000, "", "₹45,000"},
		{250000, "INR", "₹2,50,000"},
		{45000000, "inr", "₹4,50,00,000"},
		{1234567890, "INR", "₹1,23,45,67,890"},
		{1500, "USD", "$1,500"},
		{1500, "AED", "AED 1,500"},
		{-25000, "INR", "-₹25,000"},
	}

	for _, tt := range tests {
		if got := FormatPrice(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatPrice(%d, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestCompactPrice(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{500, "₹500"},
		{85000, "₹85 K"},
		{8500000, "₹85 L"},
		{150000, "₹1.5 L"},
		{45000000, "₹4.5 Cr"},
		{100000000, "₹10 Cr"},
		{12345678, "₹1.23 Cr"},
	}

	for _, tt := range tests {
		if got := CompactPrice(tt.amount); got != tt.want {
			t.Errorf("CompactPrice(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Number
		wantErr bool
	}{
		{`45000`, 45000, false},
		{`"45000"`, 45000, false},
		{`" 12 "`, 12, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"abc"`, 0, true},
		{`1.5`, 0, true},
	}

	for _, tt := range tests {
		var n Number
		err := n.UnmarshalJSON([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalJSON(%s) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if n != tt.want {
			t.Errorf("UnmarshalJSON(%s) = %d, want %d", tt.in, n, tt.want)
		}
	}
}
