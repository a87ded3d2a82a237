package writeback

import (
	"fmt"

	"mvdan.cc/gofumpt/format"
)

// Format formats generated Go source in-memory using gofumpt.
func Format(content []byte, filePath string) ([]byte, error) {
	formatted, err := format.Source(content, format.Options{})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", filePath, err)
	}
	return formatted, nil
}
