package legacy

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

func readXLSX(r io.Reader, sheet string) ([]row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if !slices.Contains(sheets, sheet) {
		sheet = sheets[0]
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = normalizeKey(strings.TrimSpace(h))
	}

	var rows []row
	for _, line := range cells[1:] {
		out := row{}
		for i, v := range line {
			if i >= len(header) || header[i] == "" || strings.TrimSpace(v) == "" {
				continue
			}
			out[header[i]] = v
		}
		if len(out) == 0 {
			continue
		}
		rows = append(rows, out)
	}
	return rows, nil
}

// WriteTemplate writes an empty workbook with a Members and a Branches sheet
// whose header rows name the recognised columns
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MembersSheet); err != nil {
		return fmt.Errorf("failed to create members sheet: %w", err)
	}
	if _, err := f.NewSheet(BranchesSheet); err != nil {
		return fmt.Errorf("failed to create branches sheet: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for sheet, columns := range map[string][]string{MembersSheet: MemberColumns, BranchesSheet: BranchColumns} {
		if err := f.SetSheetRow(sheet, "A1", &columns); err != nil {
			return fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
		last, err := excelize.CoordinatesToCellName(len(columns), 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
