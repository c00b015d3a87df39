package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestHasColumn(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"SpaceX"}, series.String, "Organization"),
		series.New([]string{"USA"}, series.String, "Country"),
	)

	assert.True(t, HasColumn(df, "Country"))
	assert.False(t, HasColumn(df, "ISO"))
	assert.Equal(t, []string{"ISO", "year"}, MissingColumns(df, []string{"Organization", "ISO", "year"}))
	assert.Nil(t, MissingColumns(df, []string{"Country"}))
}

func TestParseTime(t *testing.T) {
	layouts := []string{"Mon Jan 02, 2006 15:04 MST", "Mon Jan 02, 2006", "2006-01-02"}

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "Fri Aug 07, 2020 05:12 UTC", want: time.Date(2020, 8, 7, 5, 12, 0, 0, time.UTC)},
		{in: "Wed Nov 05, 1958", want: time.Date(1958, 11, 5, 0, 0, 0, 0, time.UTC)},
		{in: " 1985-01-01 ", want: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC)},
		{in: "yesterday", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTime(tt.in, layouts)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want.Year(), got.Year())
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}
}

func TestSaveToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	orgs := dataframe.New(
		series.New([]string{"RVSN USSR", "CASC"}, series.String, "Organization"),
		series.New([]int{1777, 251}, series.Int, "Launches"),
	)
	years := dataframe.New(
		series.New([]int{1957, 1958}, series.Int, "year"),
		series.New([]int{3, 28}, series.Int, "Launches"),
	)

	err := SaveToExcel([]Sheet{
		{Name: "launches_per_organization_with_a_long_name", Frame: orgs},
		{Name: "launches_per_year", Frame: years},
	}, path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"launches_per_organization_with_", "launches_per_year"}, f.GetSheetList())

	rows, err := f.GetRows("launches_per_year")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"year", "Launches"}, {"1957", "3"}, {"1958", "28"}}, rows)
}

func TestSaveToExcel_Empty(t *testing.T) {
	assert.Error(t, SaveToExcel(nil, filepath.Join(t.TempDir(), "x.xlsx")))
}
