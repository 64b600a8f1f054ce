package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxas/deklarative/instrument/internal/config"
)

func TestRun_recordsAndYAML(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Format = config.FormatRecords
	cfg.Tracing.Exporter = config.ExporterYAML
	cfg.Tracing.Synchronous = true
	cfg.Delay = 0

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out))

	var records []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, `{"function":`) {
			records = append(records, line)
		}
	}
	// f(1) and g, which calls f(0).
	require.Len(t, records, 6)
	assert.Contains(t, records[0], `"function":"f"`)
	assert.Contains(t, records[0], `"phase":"entry"`)
	assert.Contains(t, records[0], `"args":{"a":1}`)
	assert.Contains(t, records[1], `"phase":"exit"`)
	assert.Contains(t, records[1], `"return":2`)
	assert.Contains(t, records[2], `"function":"g"`)
	assert.Contains(t, records[5], `"function":"g"`)
	assert.Contains(t, records[5], `"return":1`)

	assert.Contains(t, out.String(), "# f\n- name: f\n")
	assert.Contains(t, out.String(), "# g\n- name: g\n")
	assert.Contains(t, out.String(), "  children:\n  - name: f\n")
	assert.Contains(t, out.String(), `"msg":"g returned"`)
}

func TestLoadConfig_flagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: console\n  verbosity: 1\ntracing:\n  exporter: stdout\n"), 0o600))

	cmd := newRootCommand()
	require.NoError(t, cmd.Flags().Set("verbosity", "2"))

	cfg, err := loadConfig(cmd, flags{configFile: path, exporter: config.ExporterYAML, verbosity: 2})
	require.NoError(t, err)
	assert.Equal(t, config.FormatConsole, cfg.Logging.Format)
	assert.Equal(t, int8(2), cfg.Logging.Verbosity)
	assert.Equal(t, config.ExporterYAML, cfg.Tracing.Exporter)
}

func TestLoadConfig_invalid(t *testing.T) {
	_, err := loadConfig(newRootCommand(), flags{format: "xml"})
	assert.ErrorContains(t, err, "unknown log format: xml")
}

func TestValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracing:\n  exporter: carrier-pigeon\n"), 0o600))

	cmd := newRootCommand()
	cmd.SetArgs([]string{"validate", path})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.ErrorContains(t, cmd.Execute(), "unknown trace exporter: carrier-pigeon")
}
