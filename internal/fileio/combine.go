package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	excelize "github.com/xuri/excelize/v2"
)

// Combined output columns appended to every merged row.
const (
	colSourceFile = "Source File"
	colSheetName  = "Sheet Name"
)

// Combine merges every sheet of every workbook matching the glob pattern
// into a single-sheet workbook written to w. Rows keep their original
// columns (the header union, first-seen order) and gain Source File and
// Sheet Name columns so a merged dataset stays traceable to its scrape
// batches.
func Combine(pattern string, w io.Writer) error {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no workbooks match %q", pattern)
	}
	sort.Strings(paths)

	var (
		headers []string
		seen    = map[string]bool{}
		rows    []map[string]string
	)
	for _, path := range paths {
		if err := collectWorkbook(path, &headers, seen, &rows); err != nil {
			return err
		}
	}

	out := append(append([]string{}, headers...), colSourceFile, colSheetName)
	return writeCombined(w, out, rows)
}

// collectWorkbook appends every data row of every sheet in one workbook,
// extending the header union as new columns appear.
func collectWorkbook(path string, headers *[]string, seen map[string]bool, rows *[]map[string]string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Base(path)
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("read %s sheet %q: %w", base, sheet, err)
		}
		if len(sheetRows) == 0 {
			continue
		}

		local := sheetRows[0]
		for _, h := range local {
			h = strings.TrimSpace(h)
			if h != "" && !seen[h] {
				seen[h] = true
				*headers = append(*headers, h)
			}
		}

		for _, row := range sheetRows[1:] {
			if rowEmpty(row) {
				continue
			}
			m := map[string]string{
				colSourceFile: base,
				colSheetName:  sheet,
			}
			for i, h := range local {
				h = strings.TrimSpace(h)
				if h == "" || i >= len(row) {
					continue
				}
				m[h] = row[i]
			}
			*rows = append(*rows, m)
		}
	}
	return nil
}

func writeCombined(w io.Writer, headers []string, rows []map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	for i, m := range rows {
		row := make([]interface{}, len(headers))
		for c, h := range headers {
			row[c] = m[h]
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write combined workbook: %w", err)
	}
	return nil
}
