package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// Configuration errors
	ConfigLoadError
	ConfigGenerateError
	ConfigValidationError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableCheckError
	DBDropTableError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError

	// CSV errors
	CSVReadError
	CSVHeaderError
	CSVEmptyError

	// Catalog errors
	CatalogSnapshotError
	CatalogPersistError
	CatalogUnavailableError
	CatalogSQLiteOpenError

	// Import errors
	ImportTypeError
	ImportJobNotFoundError
	ImportFailedError
)
