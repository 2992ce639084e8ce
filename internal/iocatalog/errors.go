package iocatalog

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/gnames/gn"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/verdant/plantimport/pkg/errcode"
	"github.com/verdant/plantimport/pkg/pipeline"
)

// storeUnreachable reports whether err is a connectivity-class
// failure of the store rather than a data problem with one row.
func storeUnreachable(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	var connErr *pgconn.ConnectError
	if errors.As(err, &netErr) || errors.As(err, &connErr) {
		return true
	}

	return errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// SnapshotError creates an error for a failed catalog snapshot read.
// A snapshot failure means the store is unreachable or the schema is
// broken, so it always wraps pipeline.ErrStoreUnavailable.
func SnapshotError(err error) error {
	msg := `Cannot read the plant catalog

<em>Possible causes:</em>
  - Database is unreachable
  - Schema has not been created yet

<em>How to fix:</em>
  1. Check database connectivity
  2. Run: <em>plantimport create</em> to initialize the schema`

	gnErr := &gn.Error{
		Code: errcode.CatalogSnapshotError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("catalog snapshot failed: %w", err),
	}
	return fmt.Errorf("%w: %w", pipeline.ErrStoreUnavailable, gnErr)
}

// PersistError creates an error for a failed row write.
// Constraint-class failures stay per-row recoverable; connectivity
// failures wrap pipeline.ErrStoreUnavailable so the whole job fails.
// The sentinel wraps the gn.Error rather than the other way around,
// because gn.Error does not unwrap.
func PersistError(kind string, err error) error {
	gnErr := &gn.Error{
		Code: errcode.CatalogPersistError,
		Msg:  fmt.Sprintf("Cannot save %s record", kind),
		Vars: nil,
		Err:  fmt.Errorf("persist %s failed: %w", kind, err),
	}
	if storeUnreachable(err) {
		return fmt.Errorf("%w: %w", pipeline.ErrStoreUnavailable, gnErr)
	}
	return gnErr
}

// LookupError creates an error for a failed parent instance lookup.
// Connectivity failures wrap pipeline.ErrStoreUnavailable, like
// PersistError.
func LookupError(err error) error {
	gnErr := &gn.Error{
		Code: errcode.CatalogPersistError,
		Msg:  "Cannot look up parent plant instance",
		Vars: nil,
		Err:  fmt.Errorf("parent instance lookup failed: %w", err),
	}
	if storeUnreachable(err) {
		return fmt.Errorf("%w: %w", pipeline.ErrStoreUnavailable, gnErr)
	}
	return gnErr
}

// SQLiteOpenError creates an error for a SQLite catalog file that
// cannot be opened or initialized.
func SQLiteOpenError(path string, err error) error {
	msg := fmt.Sprintf(`Cannot open SQLite catalog <em>%s</em>

<em>Possible causes:</em>
  - The path is not writable
  - The file exists but is not a SQLite database`, path)

	return &gn.Error{
		Code: errcode.CatalogSQLiteOpenError,
		Vars: nil,
		Msg:  msg,
		Err:  fmt.Errorf("sqlite open failed for %s: %w", path, err),
	}
}
