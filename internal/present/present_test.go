package present

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "Zero"},
		{7, "SEVEN"},
		{19, "NINETEEN"},
		{45, "FORTY FIVE"},
		{100, "ONE HUNDRED"},
		{999, "NINE HUNDRED NINETY NINE"},
		{1000, "ONE THOUSAND"},
		{25050, "TWENTY FIVE THOUSAND FIFTY"},
		{100000, "ONE LAC"},
		{150000, "ONE LAC FIFTY THOUSAND"},
		{1000000, "TEN LAC"},
		{800000, "EIGHT LAC"},
		{10000000, "ONE CRORE"},
		{1234567890, "ONE HUNDRED TWENTY THREE CRORE FORTY FIVE LAC SIXTY SEVEN THOUSAND EIGHT HUNDRED NINETY"},
		{999.6, "ONE THOUSAND"},
		{-5, ""},
		{math.NaN(), ""},
		{math.Inf(1), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NumberToWords(tt.in), "NumberToWords(%v)", tt.in)
	}
}

func TestFormatIndianNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{100000, "1,00,000"},
		{1000000, "10,00,000"},
		{123456789, "12,34,56,789"},
		{1234.5, "1,234.5"},
		{1234.567, "1,234.57"},
		{-250000, "-2,50,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatIndianNumber(tt.in), "FormatIndianNumber(%v)", tt.in)
	}
}

func TestFormatCurrencyWithWords(t *testing.T) {
	assert.Equal(t, "₹ 10,00,000/- (TEN LAC)", FormatCurrencyWithWords(1000000, 100))
	assert.Equal(t, "₹ 9,00,000/- (NINE LAC)", FormatCurrencyWithWords("10,00,000", 90))
	assert.Equal(t, "₹ 8,00,000/- (EIGHT LAC)", FormatCurrencyWithWords("₹ 1000000", 80))
	assert.Equal(t, "₹ 3,50,000/- (THREE LAC FIFTY THOUSAND)", FormatCurrencyWithWords(1000000.0, 35))
	assert.Equal(t, "₹ 0/- (Zero)", FormatCurrencyWithWords(0, 100))
	assert.Equal(t, NotAvailable, FormatCurrencyWithWords("NA", 100))
	assert.Equal(t, NotAvailable, FormatCurrencyWithWords(nil, 100))
	assert.Equal(t, NotAvailable, FormatCurrencyWithWords(-5, 100))
	assert.Equal(t, NotAvailable, FormatCurrencyWithWords("-10,000", 90))
}

func TestRupeesInWords(t *testing.T) {
	assert.Equal(t, "Rupees TEN LAC Only", RupeesInWords(1000000))
	assert.Equal(t, "Rupees ONE LAC FIFTY THOUSAND Only", RupeesInWords("1,50,000"))
	assert.Equal(t, "", RupeesInWords(0))
	assert.Equal(t, "", RupeesInWords("Nil"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{float64(12.5), 12.5, true},
		{42, 42, true},
		{int64(7), 7, true},
		{json.Number("1500"), 1500, true},
		{"₹1,20,000", 120000, true},
		{"1,234.50 sqft", 1234.5, true},
		{"-300", -300, true},
		{"NA", 0, false},
		{"", 0, false},
		{"1.2.3", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.wantOK, ok, "ParseNumber(%v)", tt.in)
		assert.Equal(t, tt.want, got, "ParseNumber(%v)", tt.in)
	}
}

func TestCalculatePercentage(t *testing.T) {
	assert.Equal(t, 108000.0, CalculatePercentage("₹1,20,000", 90))
	assert.Equal(t, 800000.0, CalculatePercentage(1000000, 80))
	assert.Equal(t, 11111.0, CalculatePercentage(12345, 90))
	assert.Equal(t, 33.0, CalculatePercentage(100, 33.333))
	assert.Equal(t, 0.0, CalculatePercentage("abc", 50))
}

func TestRoundToNearest1000(t *testing.T) {
	assert.Equal(t, 124000.0, RoundToNearest1000(123500))
	assert.Equal(t, 123000.0, RoundToNearest1000("1,23,499"))
	assert.Equal(t, NotAvailable, RoundToNearest1000(nil))
	assert.Equal(t, NotAvailable, RoundToNearest1000(""))
	assert.Equal(t, NotAvailable, RoundToNearest1000(0))
	assert.Equal(t, NotAvailable, RoundToNearest1000(false))
	assert.Equal(t, NotAvailable, RoundToNearest1000(json.Number("0")))
	assert.Equal(t, 5000.0, RoundToNearest1000(json.Number("4600")))
	assert.Equal(t, "Not assessed", RoundToNearest1000("Not assessed"))
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"iso date", "2024-03-05", "5/3/2024"},
		{"iso utc timestamp shifts into IST", "2024-03-05T20:00:00.000Z", "6/3/2024"},
		{"iso with offset", "2024-12-31T10:00:00+05:30", "31/12/2024"},
		{"long month", "March 5, 2024", "5/3/2024"},
		{"slash ymd", "2024/11/09", "9/11/2024"},
		{"time value", time.Date(2023, 1, 2, 12, 0, 0, 0, ReportLocation), "2/1/2023"},
		{"epoch millis", float64(time.Date(2022, 7, 14, 12, 0, 0, 0, time.UTC).UnixMilli()), "14/7/2022"},
		{"unparsable kept", "next week", "next week"},
		{"empty kept", "", ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.in))
		})
	}
}

func TestExtractImageURL(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"https string", "  https://cdn.example.com/a.jpg ", "https://cdn.example.com/a.jpg"},
		{"http string", "http://x/y.png", "http://x/y.png"},
		{"data uri", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"blob", "blob:http://localhost/abc", "blob:http://localhost/abc"},
		{"relative path rejected", "/uploads/a.jpg", ""},
		{"ftp rejected", "ftp://host/a.jpg", ""},
		{"empty", "   ", ""},
		{"object url", map[string]any{"url": "https://a/b.jpg"}, "https://a/b.jpg"},
		{"object preview before src", map[string]any{"src": "https://s", "preview": "https://p"}, "https://p"},
		{"object secure_url", map[string]any{"secure_url": "https://res.cloudinary.com/x.jpg"}, "https://res.cloudinary.com/x.jpg"},
		{"object without source", map[string]any{"name": "front.jpg"}, ""},
		{"object invalid source", map[string]any{"url": "file:///etc/passwd"}, ""},
		{"number", 42, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractImageURL(tt.in))
		})
	}
}

func TestExtractAddressValue(t *testing.T) {
	assert.Equal(t, "12 MG Road, Pune", ExtractAddressValue(map[string]any{"fullAddress": "12 MG Road, Pune"}))
	assert.Equal(t, "Plot 4", ExtractAddressValue("Plot 4"))
	assert.Equal(t, "", ExtractAddressValue(map[string]any{"city": "Pune"}))
	assert.Equal(t, "", ExtractAddressValue(12))
}

func TestTitleLabel(t *testing.T) {
	assert.Equal(t, "Master Bedroom", TitleLabel("masterBedroom"))
	assert.Equal(t, "Living Room", TitleLabel("living_room"))
	assert.Equal(t, "Bedroom 2", TitleLabel("bedroom2"))
	assert.Equal(t, "Kitchen", TitleLabel("kitchen"))
	assert.Equal(t, "", TitleLabel(""))
}
