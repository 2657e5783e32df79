package ledger

import (
	"testing"
	"time"

	"go-pos-ledger/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	t.Run("Date-only end covers the whole day", func(t *testing.T) {
		r, err := ParseDateRange("2024-03-01", "2024-03-31")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), r.Start)
		assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), r.End)
	})

	t.Run("Timestamps are used as given", func(t *testing.T) {
		r, err := ParseDateRange("2024-03-01T08:00:00+05:30", "2024-03-01T18:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC), r.Start)
		assert.Equal(t, time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC), r.End)
	})

	cases := map[string][2]string{
		"missing start": {"", "2024-03-01"},
		"missing end":   {"2024-03-01", " "},
		"garbage":       {"yesterday", "2024-03-01"},
		"bad end":       {"2024-03-01", "03/31/2024"},
		"reversed":      {"2024-03-02", "2024-03-01"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDateRange(in[0], in[1])
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}
