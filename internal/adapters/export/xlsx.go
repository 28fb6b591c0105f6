// Package export renders rankings as an XLSX workbook, one sheet per category.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/internal/domain/types"
)

// ContentType is the MIME type of the workbook Rankings writes.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	maxSheetName = 31
	headerRow    = 2
	emptySheet   = "Rankings"
)

var header = []any{"Position", "Competitor", "Club", "Total", "Calculated", "Execution", "Artistry", "Difficulty"} //nolint:gochecknoglobals // fixed column layout

// Rankings writes a workbook with one sheet per category to w. Categories
// follow programme order; unknown categories come last, alphabetically.
func Rankings(w io.Writer, rankings map[string][]model.RankedEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool)
	for _, category := range orderCategories(rankings) {
		name := sheetName(category, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, category, rankings[category], bold); err != nil {
			return err
		}
	}

	if len(used) == 0 {
		if err := f.SetSheetName(defaultSheet, emptySheet); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
		if err := f.SetCellValue(emptySheet, "A1", "No validated competitors"); err != nil {
			return fmt.Errorf("failed to write placeholder: %w", err)
		}
	} else {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
		f.SetActiveSheet(0)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet, category string, entries []model.RankedEntry, style int) error {
	if err := f.SetCellValue(sheet, "A1", category); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if err := setRow(f, sheet, headerRow, header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), headerRow)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "C", 36); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	for i, e := range entries {
		row := []any{e.Position, e.Competitor, e.Club, e.TotalScore, e.CalcTotal, e.ExecutionScore, e.ArtistryScore, e.DifficultyScore}
		if err := setRow(f, sheet, headerRow+1+i, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, axis, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %q: %w", row, sheet, err)
	}
	return nil
}

func orderCategories(rankings map[string][]model.RankedEntry) []string {
	out := make([]string, 0, len(rankings))
	for _, c := range types.Categories() {
		if _, ok := rankings[c]; ok {
			out = append(out, c)
		}
	}
	var extra []string
	for c := range rankings {
		if !types.IsCategory(c) {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// sheetName derives a unique, Excel-legal sheet name from a category.
func sheetName(category string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, category)
	name = strings.ReplaceAll(name, "Development", "Dev")
	if name == "" {
		name = "Category"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}

	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := name
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = base + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
