package iocatalog

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/verdant/plantimport/pkg/pipeline"
)

func TestPersistErrorConnectivity(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{
			"network op error",
			&net.OpError{Op: "write", Net: "tcp", Err: syscall.ECONNRESET},
			true,
		},
		{"closed connection", sql.ErrConnDone, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{
			"wrapped refused",
			fmt.Errorf("dial failed: %w", syscall.ECONNREFUSED),
			true,
		},
		{
			"constraint violation",
			errors.New("duplicate key value violates unique constraint"),
			false,
		},
		{"bad input", errors.New("invalid input syntax for type uuid"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PersistError("taxonomy", tt.err)
			assert.Equal(t, tt.unavailable,
				errors.Is(err, pipeline.ErrStoreUnavailable))

			var gnErr *gn.Error
			assert.True(t, errors.As(err, &gnErr))
		})
	}
}

func TestLookupErrorConnectivity(t *testing.T) {
	err := LookupError(&net.OpError{Op: "read", Net: "tcp", Err: io.EOF})
	assert.True(t, errors.Is(err, pipeline.ErrStoreUnavailable))

	err = LookupError(errors.New("malformed nickname"))
	assert.False(t, errors.Is(err, pipeline.ErrStoreUnavailable))
}

func TestSnapshotErrorAlwaysUnavailable(t *testing.T) {
	err := SnapshotError(errors.New("relation plants does not exist"))
	assert.True(t, errors.Is(err, pipeline.ErrStoreUnavailable))
}
