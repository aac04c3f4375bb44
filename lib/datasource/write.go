package datasource

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is a named table written by WriteExcel, Records[0] is the header.
type Sheet struct {
	Name    string
	Records [][]string
}

// WriteExcel creates a workbook with the given sheets in order.
func WriteExcel(path string, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			err := f.SetSheetName("Sheet1", s.Name)
			if err != nil {
				return err
			}
		} else {
			_, err := f.NewSheet(s.Name)
			if err != nil {
				return err
			}
		}
		for r, record := range s.Records {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]any, len(record))
			for i, v := range record {
				values[i] = v
			}
			err = f.SetSheetRow(s.Name, cell, &values)
			if err != nil {
				return fmt.Errorf("write %s row %d: %w", s.Name, r+1, err)
			}
		}
	}
	return f.SaveAs(path)
}
