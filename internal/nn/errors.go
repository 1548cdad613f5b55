package nn

import "fmt"

func errRows(n int) error {
	return fmt.Errorf("kernel has %d rows, want 3", n)
}

func errCols(row, n int) error {
	return fmt.Errorf("kernel row %d has %d columns, want 3", row, n)
}

func wrapLayerIndex(i int, err error) error {
	return fmt.Errorf("layer %d: %w", i, err)
}
