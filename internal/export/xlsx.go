package export

import (
	"io"

	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// SheetName XLSX导出的工作表名
const SheetName = "Resultados"

// WriteXLSX 写出与CSV相同列的工作簿
func WriteXLSX(w io.Writer, results []models.PageResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	for col, name := range Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "C", "C", 80); err != nil {
		return err
	}

	for i, r := range results {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		rec := row(r)
		values := []interface{}{rec[0], rec[1], rec[2], rec[3]}
		if r.Page != nil {
			values[1] = *r.Page
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return errors.Wrapf(err, "write row for %s", r.DocumentName)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write xlsx")
	}
	return nil
}

// ReadXLSX 读取 WriteXLSX 写出的工作簿
func ReadXLSX(r io.Reader) ([]models.PageResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open xlsx")
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", SheetName)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty workbook: missing header")
	}

	var results []models.PageResult
	for i, cells := range rows[1:] {
		// GetRows 会省略行尾的空单元格
		rec := make([]string, len(Header))
		copy(rec, cells)
		res, err := parseRecord(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+2)
		}
		results = append(results, res)
	}
	return results, nil
}
