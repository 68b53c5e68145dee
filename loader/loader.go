// Package loader reads contact and coordinate matrices from disk and writes
// reconstruction results back out. The on-disk formats are dense numeric CSV
// for matrices and JSON for coordinate exports.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// LoadMatrixCSV reads a dense numeric matrix from a CSV file. Every row must
// have the same number of columns. A first row whose leading cell is not
// numeric is treated as a header and skipped.
func LoadMatrixCSV(path string, logger *zap.Logger) (*mat.Dense, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	var rows [][]float64
	cols := -1
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV file %s: %w", path, err)
		}
		line++

		values, err := parseRow(record)
		if err != nil {
			if line == 1 {
				logger.Debug("skipping header row", zap.String("path", path))
				continue
			}
			return nil, fmt.Errorf("bad numeric row %d in %s: %w", line, path, err)
		}

		if cols == -1 {
			cols = len(values)
		} else if len(values) != cols {
			return nil, fmt.Errorf("ragged CSV file %s: row %d has %d columns, want %d", path, line, len(values), cols)
		}
		rows = append(rows, values)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file %s contains no data rows", path)
	}

	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func parseRow(record []string) ([]float64, error) {
	values := make([]float64, len(record))
	for i, cell := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		values[i] = v
	}
	return values, nil
}

// SaveMatrixCSV writes a dense matrix as CSV with no header.
func SaveMatrixCSV(path string, m *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	rows, cols := m.Dims()
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed writing CSV row to %s: %w", path, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCoordinatesCSV writes an N×3 coordinate matrix as CSV with an x,y,z
// header row.
func SaveCoordinatesCSV(path string, coords *mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	rows, cols := coords.Dims()

	header := []string{"x", "y", "z"}
	if cols != len(header) {
		header = make([]string, cols)
		for j := range header {
			header[j] = fmt.Sprintf("c%d", j)
		}
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed writing CSV header to %s: %w", path, err)
	}

	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(coords.At(i, j), 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed writing CSV row to %s: %w", path, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// PointRecord is the JSON export schema for a single reconstructed point.
type PointRecord struct {
	Index    int       `json:"index"`
	Position []float64 `json:"position"`
}

// SaveCoordinatesJSON writes the coordinate matrix as a JSON array of
// {index, position} records.
func SaveCoordinatesJSON(path string, coords *mat.Dense) error {
	rows, cols := coords.Dims()
	records := make([]PointRecord, rows)
	for i := 0; i < rows; i++ {
		pos := make([]float64, cols)
		for j := 0; j < cols; j++ {
			pos[j] = coords.At(i, j)
		}
		records[i] = PointRecord{Index: i, Position: pos}
	}

	data, err := sonic.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal coordinates: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON file %s: %w", path, err)
	}
	return nil
}
