package fileio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	excelize "github.com/xuri/excelize/v2"
)

func writeTestWorkbook(t *testing.T, path string, sheets map[string][][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for sheet, rows := range sheets {
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for i, row := range rows {
			addr, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell addr: %v", err)
			}
			if err := f.SetSheetRow(sheet, addr, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

func TestCombine_MergesSheetsWithProvenance(t *testing.T) {
	dir := t.TempDir()
	writeTestWorkbook(t, filepath.Join(dir, "week1.xlsx"), map[string][][]interface{}{
		"Rooms": {
			{"Room Type", "Price"},
			{"Twin", "2100"},
			{"Suite", "5400"},
		},
	})
	writeTestWorkbook(t, filepath.Join(dir, "week2.xlsx"), map[string][][]interface{}{
		"Rooms": {
			{"Room Type", "Price", "Checkin"},
			{"Studio", "1800", "2026-09-11"},
		},
	})

	var buf bytes.Buffer
	if err := Combine(filepath.Join(dir, "*.xlsx"), &buf); err != nil {
		t.Fatalf("Combine: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read combined: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}

	header := rows[0]
	col := map[string]int{}
	for i, h := range header {
		col[h] = i
	}
	for _, want := range []string{"Room Type", "Price", "Checkin", colSourceFile, colSheetName} {
		if _, ok := col[want]; !ok {
			t.Fatalf("header missing %q: %v", want, header)
		}
	}

	// Files are merged in sorted order; provenance columns are filled.
	if rows[1][col["Room Type"]] != "Twin" || rows[1][col[colSourceFile]] != "week1.xlsx" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[3][col["Room Type"]] != "Studio" || rows[3][col[colSourceFile]] != "week2.xlsx" {
		t.Errorf("row 3 = %v", rows[3])
	}
	if rows[3][col["Checkin"]] != "2026-09-11" {
		t.Errorf("union column not carried: %v", rows[3])
	}
	if rows[1][col[colSheetName]] != "Rooms" {
		t.Errorf("sheet name not recorded: %v", rows[1])
	}
}

func TestCombine_NoMatches(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := Combine(filepath.Join(dir, "*.xlsx"), &buf); err == nil {
		t.Fatal("expected error for empty glob")
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written on error")
	}
}

func TestCombine_SkipsEmptySheets(t *testing.T) {
	dir := t.TempDir()
	writeTestWorkbook(t, filepath.Join(dir, "data.xlsx"), map[string][][]interface{}{
		"Rooms": {
			{"Room Type"},
			{"Twin"},
		},
		"Notes": {},
	})

	var buf bytes.Buffer
	if err := Combine(filepath.Join(dir, "*.xlsx"), &buf); err != nil {
		t.Fatalf("Combine: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read combined: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want header + 1", len(rows))
	}
	if _, err := os.Stat(filepath.Join(dir, "data.xlsx")); err != nil {
		t.Fatalf("source workbook missing: %v", err)
	}
}
