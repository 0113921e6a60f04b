package exporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ctview/pkg/contracts/domain"
)

// WriteSeriesWorkbook renders the given series sets as an Excel
// workbook, one sheet per unit system. Sheet names are the capitalized
// unit names.
func WriteSeriesWorkbook(w io.Writer, sets ...domain.SeriesSet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, set := range sets {
		sheet := sheetName(set.Unit)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}
		if err := writeSheet(f, sheet, set); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, set domain.SeriesSet) error {
	header := make([]interface{}, 0, len(set.Channels)+1)
	header = append(header, "DateTime")
	for _, id := range set.ChannelIDs() {
		header = append(header, id)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header on %s: %w", sheet, err)
	}

	rows := rowCount(set)
	row := make([]interface{}, len(set.Channels)+1)
	for i := 0; i < rows; i++ {
		row[0] = set.Channels[0].Points[i].Timestamp.Format(time.RFC3339Nano)
		for c, ch := range set.Channels {
			row[c+1] = ch.Points[i].Value
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

func sheetName(unit domain.UnitSystem) string {
	name := string(unit)
	if name == "" {
		return "Series"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
