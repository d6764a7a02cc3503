package holdingscsv

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors are terminal for an ingestion attempt; handlers surface the message verbatim.
var (
	ErrEmptyFile      = errors.New("CSV file is empty or malformed")
	ErrHeaderNotFound = errors.New("CSV header not found: make sure the file has columns such as Ticker, Symbol or Name")
	ErrMissingColumns = errors.New("required columns (Ticker/Symbol and Weight) not found")
	ErrNoValidData    = errors.New("no valid data found")
)

// MissingColumnsError names the header cells that were seen when ticker or weight could not be mapped.
type MissingColumnsError struct {
	Missing []Field
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s\nheaders: %s", ErrMissingColumns.Error(), strings.Join(e.Headers, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}
