package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"hypotheek/internal/amortization"
	"hypotheek/internal/core"
)

func sampleParams() core.MortgageParams {
	return core.MortgageParams{Amount: 10000, Rate: 6, Months: 12, StartDate: core.NewDate(2024, 1, 15)}
}

func TestWriteCSV(t *testing.T) {
	p := sampleParams()
	schedule := amortization.GenerateSchedule(p)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, schedule); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(records) != 13 {
		t.Fatalf("len(records) = %d, want header + 12", len(records))
	}
	if strings.Join(records[0], ",") != "Month,Date,Payment,Interest,Principal,RemainingDebt" {
		t.Errorf("header = %v", records[0])
	}

	first := records[1]
	if first[0] != "1" || first[1] != "2024-02-15" {
		t.Errorf("first row = %v", first)
	}
	if first[2] != "860.66" {
		t.Errorf("payment = %s, want 860.66", first[2])
	}
	if first[3] != "50.00" {
		t.Errorf("interest = %s, want 50.00", first[3])
	}
	if last := records[12]; last[5] != "0.00" {
		t.Errorf("final remaining debt = %s, want 0.00", last[5])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "Month,Date,Payment,Interest,Principal,RemainingDebt" {
		t.Fatalf("output = %q", got)
	}
}

func TestWriteYearlyCSV(t *testing.T) {
	yearly := []core.YearlyInterest{{Year: 2024, Interest: 1234.565}, {Year: 2025, Interest: 10}}

	var buf bytes.Buffer
	if err := WriteYearlyCSV(&buf, yearly, 1244.565); err != nil {
		t.Fatal(err)
	}

	want := "Year,Interest\n2024,1234.57\n2025,10.00\nTotal,1244.57\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWritePDF(t *testing.T) {
	p := core.MortgageParams{Amount: 300000, Rate: 4, Months: 360, StartDate: core.NewDate(2024, 1, 1)}
	schedule := amortization.GenerateSchedule(p)

	var buf bytes.Buffer
	if err := WritePDF(&buf, p, schedule); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:8])
	}
	if !bytes.Contains(out, []byte("%%EOF")) {
		t.Fatal("output missing PDF trailer")
	}
}

func TestWritePDF_EmptySchedule(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleParams(), nil); err != nil {
		t.Fatalf("WritePDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output does not start with a PDF header")
	}
}

func TestAxisLabels(t *testing.T) {
	tests := []struct {
		peak float64
		want []string
	}{
		{12000, []string{"€0", "€3k", "€6k", "€9k", "€12k"}},
		{11834.6, []string{"€0", "€3k", "€5.9k", "€8.9k", "€11.8k"}},
		{0, []string{"€0", "€0", "€0", "€0", "€0"}},
	}

	for _, tt := range tests {
		got := axisLabels(tt.peak)
		if strings.Join(got, " ") != strings.Join(tt.want, " ") {
			t.Errorf("axisLabels(%v) = %v, want %v", tt.peak, got, tt.want)
		}
	}
}
