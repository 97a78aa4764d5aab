package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/hoyle1974/weekly/registry"
	"github.com/hoyle1974/weekly/telemetry"
)

func runCLI(t *testing.T, cfg config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, args, &out, telemetry.NOPLogger{})
	return out.String(), err
}

func TestFormatCommand(t *testing.T) {
	out, err := runCLI(t, config{}, "format", "00:00~24:00(Sat);09:00~10:00")
	require.NoError(t, err)
	require.Equal(t, "09:00~10:00(Sun,Mon,Tue,Wed,Thu,Fri);00:00~24:00(Sat)\n", out)
}

func TestIntervalsCommand(t *testing.T) {
	out, err := runCLI(t, config{}, "intervals", "09:00~10:00(Mon)")
	require.NoError(t, err)
	require.Equal(t, "Mon 09:00 ~ Mon 10:00\n", out)
}

func TestOpenCommand(t *testing.T) {
	out, err := runCLI(t, config{}, "open", "22:00~02:00(Fri)", "sat", "01:30")
	require.NoError(t, err)
	require.Equal(t, "true\n", out)

	out, err = runCLI(t, config{}, "open", "22:00~02:00(Fri)", "Sat", "02:00")
	require.NoError(t, err)
	require.Equal(t, "false\n", out)

	_, err = runCLI(t, config{}, "open", "09:00~10:00", "Funday", "09:00")
	require.ErrorIs(t, err, errUsage)
}

func TestAlgebraCommands(t *testing.T) {
	out, err := runCLI(t, config{}, "union", "09:00~10:00(Mon)", "10:00~11:00(Mon)")
	require.NoError(t, err)
	require.Equal(t, "09:00~11:00(Mon)\n", out)

	out, err = runCLI(t, config{}, "intersect", "09:00~12:00(Mon)", "11:00~13:00(Mon)")
	require.NoError(t, err)
	require.Equal(t, "11:00~12:00(Mon)\n", out)

	out, err = runCLI(t, config{}, "contains", "09:00~12:00(Mon)", "10:00~11:00(Mon)")
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}

func TestPlacesCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "details.json")
	body := `{"status":"OK","result":{"opening_hours":{"periods":[{"open":{"day":1,"time":"0900"},"close":{"day":1,"time":"1700"}}]}}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, err := runCLI(t, config{}, "places", path)
	require.NoError(t, err)
	require.Equal(t, "09:00~17:00(Mon)\n", out)
}

func TestRegistryCommands(t *testing.T) {
	cfg := config{Source: "disk", URI: t.TempDir()}

	out, err := runCLI(t, cfg, "put", "cafe", "09:00~17:00")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "cafe revision 1:"))

	_, err = runCLI(t, cfg, "put", "cafe", "10:00~17:00")
	require.NoError(t, err)

	out, err = runCLI(t, cfg, "get", "cafe")
	require.NoError(t, err)
	require.Equal(t, "10:00~17:00(Sun,Mon,Tue,Wed,Thu,Fri,Sat)\n", out)

	out, err = runCLI(t, cfg, "get", "cafe", "1")
	require.NoError(t, err)
	require.Equal(t, "09:00~17:00(Sun,Mon,Tue,Wed,Thu,Fri,Sat)\n", out)

	out, err = runCLI(t, cfg, "history", "cafe")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	out, err = runCLI(t, cfg, "list")
	require.NoError(t, err)
	require.Equal(t, "cafe\n", out)

	_, err = runCLI(t, cfg, "delete", "cafe")
	require.NoError(t, err)

	_, err = runCLI(t, cfg, "get", "cafe")
	require.True(t, errors.Is(err, registry.ErrNotFound))
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"bogus"},
		{"format"},
		{"union", "09:00~10:00"},
		{"get", "cafe", "one"},
	} {
		_, err := runCLI(t, config{Source: "memory"}, args...)
		require.ErrorIs(t, err, errUsage, "args %v", args)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("WEEKLY_SOURCE", "memory")
	t.Setenv("WEEKLY_BUCKET", "schedules")

	cfg, rest, err := loadConfig([]string{"--uri", "/tmp/x", "list"})
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Source)
	require.Equal(t, "schedules", cfg.Bucket)
	require.Equal(t, "/tmp/x", cfg.URI)
	require.Equal(t, []string{"list"}, rest)

	_, err = newStorage(context.Background(), config{Source: "tape"})
	require.Error(t, err)
	_, err = newStorage(context.Background(), config{Source: "s3"})
	require.Error(t, err)
}
