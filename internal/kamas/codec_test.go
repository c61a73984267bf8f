package kamas

import (
	"errors"
	"math"
	"testing"

	"serotonyl.ru/kamasbot/internal/common"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"millions", "10M", 10_000_000, false},
		{"thousands", "500K", 500_000, false},
		{"comma decimal", "1,5M", 1_500_000, false},
		{"dot decimal", "2.5K", 2_500, false},
		{"lowercase", "3m", 3_000_000, false},
		{"spaces", " 10 M ", 10_000_000, false},
		{"raw number", "1000000", 1_000_000, false},
		{"zero", "0", 0, false},
		{"letters", "abc", 0, true},
		{"empty", "", 0, true},
		{"bare suffix", "M", 0, true},
		{"bare dot", ".", 0, true},
		{"wrong suffix", "10B", 0, true},
		{"double suffix", "10MK", 0, true},
		{"negative", "-5M", 0, true},
		{"trailing junk", "10M!", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) err=%v wantErr=%v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, common.ErrInvalidFormat) {
					t.Fatalf("Parse(%q) err=%v, ожидали ErrInvalidFormat", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("Parse(%q)=%v want=%v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{10_000_000, "10M"},
		{1_500_000, "1.50M"},
		{500_000, "500K"},
		{2_500, "2.50K"},
		{750, "750"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := Format(tt.amount); got != tt.want {
			t.Errorf("Format(%v)=%q want=%q", tt.amount, got, tt.want)
		}
	}
}

// Закон round-trip: parse(format(x)) восстанавливает x с точностью 0.01.
func TestRoundTrip(t *testing.T) {
	amounts := []float64{1, 999, 1_000, 1_234, 500_000, 999_999, 1_000_000, 1_500_000, 12_345_678, 70_000_000}
	for _, x := range amounts {
		got, err := Parse(Format(x))
		if err != nil {
			t.Fatalf("Parse(Format(%v)): %v", x, err)
		}
		if rel := math.Abs(got-x) / x; rel > 0.01 {
			t.Errorf("round-trip %v → %q → %v, относительная ошибка %v", x, Format(x), got, rel)
		}
	}
}

func TestParsePrice(t *testing.T) {
	if p, err := ParsePrice("5,5"); err != nil || p != 5.5 {
		t.Fatalf("ParsePrice(\"5,5\")=%v, %v", p, err)
	}
	if _, err := ParsePrice("0"); !errors.Is(err, common.ErrInvalidPrice) {
		t.Fatalf("ParsePrice(\"0\") err=%v, ожидали ErrInvalidPrice", err)
	}
	if _, err := ParsePrice("дорого"); !errors.Is(err, common.ErrInvalidPrice) {
		t.Fatalf("ParsePrice(не число) err=%v, ожидали ErrInvalidPrice", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		total, first, second float64
	}{
		{70_000_000, 35_000_000, 35_000_000},
		{50_000_001, 25_000_000, 25_000_001},
		{99_999_999, 49_999_999, 50_000_000},
	}
	for _, tt := range tests {
		s := Split(tt.total)
		if s.FirstHalf != tt.first || s.SecondHalf != tt.second {
			t.Errorf("Split(%v)=%+v, ожидали %v/%v", tt.total, s, tt.first, tt.second)
		}
		if s.FirstHalf+s.SecondHalf != tt.total {
			t.Errorf("Split(%v): половины не сходятся к исходной сумме", tt.total)
		}
	}
}

func TestNeedsSplit(t *testing.T) {
	if NeedsSplit(50_000_000) {
		t.Error("ровно 50M не требует разбивки")
	}
	if !NeedsSplit(50_000_001) {
		t.Error("больше 50M требует разбивки")
	}
}
