package report

import (
	"MissionLaunches/src/config"
	"MissionLaunches/src/processor"
	"MissionLaunches/src/storage"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type recordingPusher struct {
	paths []string
}

func (p *recordingPusher) Push(path string) error {
	p.paths = append(p.paths, path)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataFile = filepath.Join("testdata", "mission_launches.csv")
	cfg.OutputDir = filepath.Join(t.TempDir(), "output")
	cfg.ExportXLSX = "launch_summary.xlsx"
	return cfg
}

func newTestPipeline(t *testing.T, cfg *config.Config) (*Pipeline, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var console, logs bytes.Buffer
	p, err := NewPipeline(cfg, config.DefaultDataConfig(), storage.NewWriterLogger(&logs), &console)
	require.NoError(t, err)
	return p, &console, &logs
}

func TestPipeline_Run(t *testing.T) {
	cfg := testConfig(t)
	p, console, _ := newTestPipeline(t, cfg)
	pusher := &recordingPusher{}
	p.SetPusher(pusher)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16, res.Rows)

	want := []string{
		OrganizationsFile, HistogramFile, CountryMapFile, FailureMapFile,
		SunburstFile, YearBarFile, RivalBarFile, PriceTrendFile,
	}
	require.Len(t, res.Artifacts, len(want))
	for i, name := range want {
		assert.Equal(t, filepath.Join(cfg.OutputDir, name), res.Artifacts[i])
		info, err := os.Stat(res.Artifacts[i])
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
	assert.Equal(t, res.Artifacts, pusher.paths)

	html, err := os.ReadFile(filepath.Join(cfg.OutputDir, CountryMapFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Rocket Launches per Country")
	assert.Contains(t, string(html), "United States")

	out := console.String()
	assert.Contains(t, out, "5,450.00")
	assert.Contains(t, out, "Amount of rows and columns: (16, 10)")
	assert.Contains(t, out, "StatusRetired")
	assert.Contains(t, out, "Failure")

	f, err := excelize.OpenFile(res.Workbook)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t,
		[]string{"organizations", "countries", "failures", "spending", "years", "cold_war", "avg_price"},
		f.GetSheetList())

	rows, err := f.GetRows("cold_war")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"year", "Country", "Launches"},
		{"1957", "Russian Federation", "1"},
		{"1957", "USA", "1"},
		{"1985", "Russian Federation", "1"},
		{"1986", "USA", "1"},
	}, rows)
}

func TestPipeline_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	p, _, logs := newTestPipeline(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, res)
	assert.Empty(t, res.Artifacts)
	assert.Empty(t, res.Workbook)
	assert.Contains(t, logs.String(), "已取消")
}

func TestPipeline_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DataFile = filepath.Join(t.TempDir(), "nope.csv")
		p, _, _ := newTestPipeline(t, cfg)
		_, err := p.Run(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unmapped country", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "launches.csv")
		require.NoError(t, os.WriteFile(path, []byte(
			"Unnamed: 0.1,Unnamed: 0,Organisation,Location,Date,Rocket_Status,Price,Mission_Status\n"+
				"0,0,Nobody,\"Pad 1, Atlantis\",2020-01-01,StatusActive,,Success\n"), 0644))

		cfg := testConfig(t)
		cfg.DataFile = path
		p, _, _ := newTestPipeline(t, cfg)
		_, err := p.Run(context.Background())
		assert.ErrorIs(t, err, processor.ErrCountryNotFound)

		_, err = os.Stat(cfg.OutputDir)
		assert.True(t, os.IsNotExist(err), "nothing is written when enrichment fails")
	})
}
