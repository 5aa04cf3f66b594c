package db

import "testing"

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"zero values", Page{}, Page{Page: 1, Limit: 12}},
		{"negative page", Page{Page: -3, Limit: 5}, Page{Page: 1, Limit: 5}},
		{"clamped limit", Page{Page: 2, Limit: 500}, Page{Page: 2, Limit: MaxLimit}},
		{"kept", Page{Page: 4, Limit: 10}, Page{Page: 4, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(12); got != tt.want {
				t.Errorf("Normalize = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPageOffsetAndPages(t *testing.T) {
	p := Page{Page: 3, Limit: 10}
	if p.Offset() != 20 {
		t.Errorf("offset = %d, want 20", p.Offset())
	}

	tests := []struct {
		total int64
		want  int
	}{
		{0, 0},
		{1, 1},
		{10, 1},
		{11, 2},
		{95, 10},
	}
	for _, tt := range tests {
		if got := p.Pages(tt.total); got != tt.want {
			t.Errorf("Pages(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}
