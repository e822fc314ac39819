package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  Date
	}{
		{"2011-04-12", Date{Year: 2011, Month: 4, Day: 12}},
		{"2011-04", Date{Year: 2011, Month: 4}},
		{"2011", Date{Year: 2011}},
		{"", Date{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDate("12/04/2011")
	assert.Error(t, err, "non-ISO dates should be rejected")
}

func TestDateRoundTrip(t *testing.T) {
	for _, s := range []string{"2011-04-12", "2011-04", "2011"} {
		d, err := ParseDate(s)
		require.NoError(t, err)
		assert.Equal(t, s, d.String())
	}
}

func TestMoreCompleteThan(t *testing.T) {
	full := Date{Year: 2011, Month: 4, Day: 12}
	month := Date{Year: 2011, Month: 4}
	year := Date{Year: 2011}
	otherYear := Date{Year: 2012, Month: 1, Day: 1}

	assert.True(t, full.MoreCompleteThan(year))
	assert.True(t, full.MoreCompleteThan(month))
	assert.True(t, month.MoreCompleteThan(year))
	assert.True(t, year.MoreCompleteThan(Date{}))

	// A year-only date never refines a full date.
	assert.False(t, year.MoreCompleteThan(full))
	assert.False(t, full.MoreCompleteThan(full))

	// Disagreement on the year is not a refinement.
	assert.False(t, otherYear.MoreCompleteThan(year))

	// Same year, different month: not a refinement of a month-precision date.
	assert.False(t, Date{Year: 2011, Month: 5, Day: 1}.MoreCompleteThan(month))
}

func TestDateFromUnix(t *testing.T) {
	// 2020-09-17T00:00:00Z, Hades 1.0 release.
	d := DateFromUnix(1600300800)
	assert.Equal(t, Date{Year: 2020, Month: 9, Day: 17}, d)
	assert.True(t, DateFromUnix(0).IsZero())
}
