package record_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant/plantimport/pkg/record"
)

func TestParseDateAutoDetect(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "iso", in: "2024-03-15", want: "2024-03-15"},
		{name: "us slashes", in: "03/15/2024", want: "2024-03-15"},
		{name: "european slashes", in: "15/03/2024", want: "2024-03-15"},
		{name: "ambiguous defaults to US", in: "03/04/2024", want: "2024-03-04"},
		{name: "padding", in: "  2024-03-15 ", want: "2024-03-15"},
		{name: "two digit year", in: "03/15/24", wantErr: true},
		{name: "garbage", in: "soon", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "impossible day", in: "13/32/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := record.ParseDate(tt.in, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(time.DateOnly))
		})
	}
}

func TestParseDateFixedLayout(t *testing.T) {
	got, err := record.ParseDate("15/03/2024", "02/01/2006")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", got.Format(time.DateOnly))

	// Fixed layout disables auto-detection.
	_, err = record.ParseDate("2024-03-15", "02/01/2006")
	assert.Error(t, err)
}
