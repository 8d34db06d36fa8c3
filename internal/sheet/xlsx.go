package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheetName = "data"

type XLSX struct{}

func (XLSX) Read(r io.Reader) ([]map[string]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(headers))
		for i, h := range headers {
			if i >= len(record) || record[i] == "" {
				continue
			}
			row[h] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (XLSX) Write(w io.Writer, headers []string, rows []map[string]any) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		return fmt.Errorf("create xlsx sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default xlsx sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	record := make([]any, len(headers))
	for n, row := range rows {
		for i, h := range headers {
			record[i] = row[h]
		}
		addr, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return fmt.Errorf("xlsx cell address: %w", err)
		}
		if err := f.SetSheetRow(xlsxSheetName, addr, &record); err != nil {
			return fmt.Errorf("write xlsx row: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
