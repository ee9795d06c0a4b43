// Package roster reads the participant list to register.
//
// A roster is a table with a header row; the columns name, email, phone and
// team are recognised (case-sensitive) and any of them may be absent.
// Supported formats are .csv and .xlsx (first sheet).
package roster

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"qrpass/internal/domain"
	"qrpass/internal/domain/entities"
)

const (
	ColumnName  = "name"
	ColumnEmail = "email"
	ColumnPhone = "phone"
	ColumnTeam  = "team"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Read loads every data row of the roster at path, in file order.
func Read(path string) ([]entities.ParticipantRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRosterNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", "":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedRoster, ext)
	}
}

// ReadCSV parses a comma-separated roster.
func ReadCSV(r io.Reader) ([]entities.ParticipantRecord, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = br.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(br)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return toRecords(records), nil
}

// ReadXLSX parses the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]entities.ParticipantRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return toRecords(rows), nil
}

// toRecords maps table rows onto records using the first non-blank row as
// header. Blank data rows are dropped; Row numbers count kept rows from 1.
func toRecords(rows [][]string) []entities.ParticipantRecord {
	var (
		header map[string]int
		out    []entities.ParticipantRecord
	)
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if header == nil {
			header = indexHeader(row)
			continue
		}
		out = append(out, entities.ParticipantRecord{
			Row:   len(out) + 1,
			Name:  cell(row, header, ColumnName),
			Email: cell(row, header, ColumnEmail),
			Phone: cell(row, header, ColumnPhone),
			Team:  cell(row, header, ColumnTeam),
		})
	}
	return out
}

func indexHeader(row []string) map[string]int {
	header := make(map[string]int, len(row))
	for i, name := range row {
		name = strings.TrimSpace(name)
		if _, seen := header[name]; !seen {
			header[name] = i
		}
	}
	return header
}

func cell(row []string, header map[string]int, column string) string {
	i, ok := header[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
