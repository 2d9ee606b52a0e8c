package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// LoadCSV loads digits from a CSV file in the common MNIST CSV layout:
// the label in column 0 followed by one 0-255 pixel value per column.
// hasHeader skips the first line if true.
func LoadCSV(filename string, hasHeader bool) (Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}

	startRow := 0
	if hasHeader {
		startRow = 1
	}

	if len(records) <= startRow {
		return nil, fmt.Errorf("csv file has no data rows")
	}

	numCols := len(records[startRow])
	if numCols < 2 {
		return nil, fmt.Errorf("csv needs a label column and at least one pixel column")
	}

	data := make(Dataset, 0, len(records)-startRow)
	for i := startRow; i < len(records); i++ {
		record := records[i]
		if len(record) != numCols {
			return nil, fmt.Errorf("inconsistent number of columns at row %d", i)
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse label at row %d: %w", i, err)
		}

		features := make([]float64, numCols-1)
		for j, valStr := range record[1:] {
			val, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse value at row %d, col %d: %w", i, j+1, err)
			}
			features[j] = val / 255
		}

		data = append(data, Sample{Label: label, Features: features})
	}

	return data, nil
}
