package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subjects.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

var testSchema = Schema{
	TimeColumn:  "TIME",
	EventColumn: "Event",
	Rename:      map[string]string{"ejection_fraction": "EF"},
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, "age,ejection_fraction,serum_creatinine,TIME,Event\n"+
		"75,20,1.9,4,1\n"+
		"55,38,1.1,6,0\n"+
		"65,40,1.3,8,1\n")

	tbl, err := Load(path, testSchema)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.N() != 3 {
		t.Errorf("N = %d, want 3", tbl.N())
	}
	if tbl.EventCount() != 2 {
		t.Errorf("EventCount = %d, want 2", tbl.EventCount())
	}

	wantNames := []string{"age", "EF", "serum_creatinine", "TIME", "Event"}
	if diff := cmp.Diff(wantNames, tbl.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	ef, err := tbl.Column("EF")
	if err != nil {
		t.Fatalf("Column(EF): %v", err)
	}
	if diff := cmp.Diff([]float64{20, 38, 40}, ef); diff != "" {
		t.Errorf("EF mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 0, 1}, tbl.Events()); diff != "" {
		t.Errorf("Events mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		csv        string
		wantColumn string
		wantRow    int
	}{
		{
			name:       "missing value",
			csv:        "age,TIME,Event\n75,4,1\n,6,0\n",
			wantColumn: "age",
			wantRow:    2,
		},
		{
			name:       "non numeric",
			csv:        "age,TIME,Event\n75,4,1\nNA,6,0\n",
			wantColumn: "age",
			wantRow:    2,
		},
		{
			name:       "non positive time",
			csv:        "age,TIME,Event\n75,0,1\n",
			wantColumn: "TIME",
			wantRow:    1,
		},
		{
			name:       "negative time",
			csv:        "age,TIME,Event\n75,-3,1\n",
			wantColumn: "TIME",
			wantRow:    1,
		},
		{
			name:       "malformed event code",
			csv:        "age,TIME,Event\n75,4,1\n60,6,2\n",
			wantColumn: "Event",
			wantRow:    2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCSV(t, tt.csv), Schema{TimeColumn: "TIME", EventColumn: "Event"})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got: %v", err)
			}
			if verr.Column != tt.wantColumn || verr.Row != tt.wantRow {
				t.Errorf("got column %q row %d, want column %q row %d",
					verr.Column, verr.Row, tt.wantColumn, tt.wantRow)
			}
		})
	}
}

func TestLoad_RaggedRow(t *testing.T) {
	// encoding/csv reports inconsistent field counts before our validation.
	_, err := Load(writeCSV(t, "age,TIME,Event\n75,4\n"), Schema{TimeColumn: "TIME", EventColumn: "Event"})
	if err == nil {
		t.Fatal("expected error for ragged row")
	}
}

func TestWithColumn(t *testing.T) {
	path := writeCSV(t, "age,TIME,Event\n75,4,1\n55,6,0\n")
	tbl, err := Load(path, Schema{TimeColumn: "TIME", EventColumn: "Event"})
	if err != nil {
		t.Fatal(err)
	}

	ext, err := tbl.WithColumn("age2", []float64{150, 110})
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	if _, err := tbl.Column("age2"); err == nil {
		t.Error("source table gained the derived column")
	}
	col, err := ext.Column("age2")
	if err != nil {
		t.Fatalf("Column(age2): %v", err)
	}
	if diff := cmp.Diff([]float64{150, 110}, col); diff != "" {
		t.Errorf("age2 mismatch (-want +got):\n%s", diff)
	}

	if _, err := ext.WithColumn("age2", []float64{0, 0}); err == nil {
		t.Error("expected error appending duplicate column")
	}
	if _, err := ext.WithColumn("short", []float64{1}); err == nil {
		t.Error("expected error appending wrong-length column")
	}
}

func TestSelect(t *testing.T) {
	path := writeCSV(t, "age,EF,TIME,Event\n75,20,4,1\n55,38,6,0\n")
	tbl, err := Load(path, Schema{TimeColumn: "TIME", EventColumn: "Event"})
	if err != nil {
		t.Fatal(err)
	}
	sub, err := tbl.Select("EF")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	want := []string{"EF", "TIME", "Event"}
	if diff := cmp.Diff(want, sub.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if _, err := tbl.Select("nope"); err == nil {
		t.Error("expected error selecting unknown column")
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	path := writeCSV(t, "age,TIME,Event\n75.5,4,1\n55,6,0\n")
	tbl, err := Load(path, Schema{TimeColumn: "TIME", EventColumn: "Event"})
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out.csv")
	if err := tbl.WriteCSV(out); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	back, err := Load(out, Schema{TimeColumn: "TIME", EventColumn: "Event"})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for _, name := range []string{"age", "TIME", "Event"} {
		a, _ := tbl.Column(name)
		b, _ := back.Column(name)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("column %s mismatch (-want +got):\n%s", name, diff)
		}
	}
}
