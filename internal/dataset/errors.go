package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDataSource matches every *DataSourceError via errors.Is.
var ErrDataSource = errors.New("dataset: data source error")

// DataSourceError reports a source that cannot be turned into a Table: it is
// unreadable, empty, structurally broken, or lacks required columns.
type DataSourceError struct {
	Path    string
	Op      string
	Missing []string
	Err     error
}

func (e *DataSourceError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("data source %s: missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
	}
	if e.Err == nil {
		return fmt.Sprintf("data source %s: %s", e.Path, e.Op)
	}
	return fmt.Sprintf("data source %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDataSource.
func (e *DataSourceError) Is(target error) bool { return target == ErrDataSource }
