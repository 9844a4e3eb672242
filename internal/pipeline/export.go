package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"cmrstac/internal"
)

func ExportCollectionsToXLSX(rows []internal.CollectionRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{
		"id", "title", "versions", "item_count", "bbox_count",
		"time_start", "time_end", "last_run_id", "last_seen_at",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.ID)
		set(2, row.Title)
		set(3, strings.Join(row.Versions, ", "))
		set(4, row.ItemCount)
		set(5, row.BBoxCount)
		set(6, derefString(row.TimeStart))
		set(7, derefString(row.TimeEnd))
		set(8, row.LastRunID)
		set(9, row.LastSeenAt)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
