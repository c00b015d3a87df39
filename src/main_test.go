package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-bogus"}, &stdout, &stderr)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "-bogus")
}

// 配置只加载一次，整个进程内只能有一个完整运行的用例
func TestRun(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "run.log")
	outDir := filepath.Join(dir, "out")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"data_file: missing.csv\n"+
			"output_dir: ignored\n"+
			"log_name: "+logFile+"\n"+
			"log_level: DEBUG\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dataconfig.json"), []byte("{}"), 0644))

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-config", dir,
		"-data", filepath.Join("report", "testdata", "mission_launches.csv"),
		"-output", outDir,
	}, &stdout, &stderr)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 8)

	assert.Contains(t, stdout.String(), "Amount of rows and columns")

	logs, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logs), "INFO")
	assert.Contains(t, string(logs), "DEBUG")
	assert.Contains(t, stderr.String(), "报表生成完成")
}
