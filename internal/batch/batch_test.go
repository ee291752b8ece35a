package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/cdf2fhir/internal/bundle"
	"github.com/vk/cdf2fhir/internal/precondition"
	"github.com/vk/cdf2fhir/internal/record"
	"github.com/vk/cdf2fhir/internal/store"
)

var errBoom = errors.New("boom")

// fakeProcessor bundles one record per table, keyed by its "id" variable.
type fakeProcessor struct{}

func (fakeProcessor) Bundle(_ context.Context, table store.Table) (*bundle.Bundle, error) {
	if _, ok := table["skip"]; ok {
		return nil, precondition.Fail("date missing in assessment 1a")
	}
	if _, ok := table["boom"]; ok {
		return nil, errBoom
	}
	id := *table["id"]["1a"]
	return bundle.Assemble([]record.Record{{"resourceType": "Patient", "id": id}})
}

func writeInputs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestReadTable(t *testing.T) {
	t.Parallel()

	dir := writeInputs(t, map[string]string{
		"ok.json":     `{"id": {"1a": "42"}, "age": {"1a": null}}`,
		"array.json":  `[1, 2]`,
		"null.json":   `null`,
		"number.json": `{"id": {"1a": 42}}`,
	})

	table, err := ReadTable(filepath.Join(dir, "ok.json"))
	require.NoError(t, err)
	require.Equal(t, "42", *table["id"]["1a"])
	require.Contains(t, table["age"], "1a")
	require.Nil(t, table["age"]["1a"])

	for _, name := range []string{"array.json", "null.json", "number.json"} {
		_, err := ReadTable(filepath.Join(dir, name))
		require.Error(t, err, name)
		require.Contains(t, err.Error(), "decoding input file", name)
	}

	_, err = ReadTable(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunToWriter(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeInputs(t, map[string]string{"p.json": `{"id": {"1a": "42"}}`})
	var out bytes.Buffer

	// --- Act ---
	err := New(fakeProcessor{}).RunToWriter(context.Background(), filepath.Join(dir, "p.json"), &out)

	// --- Assert ---
	require.NoError(t, err)
	var b bundle.Bundle
	require.NoError(t, json.Unmarshal(out.Bytes(), &b))
	require.Equal(t, "Bundle", b.ResourceType)
	require.Len(t, b.Entry, 1)
	require.Equal(t, bundle.URN("42"), b.Entry[0].FullURL)
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("out", "p1-fhir.json"), OutputPath(filepath.Join("in", "p1.json"), "out"))
	require.Equal(t, filepath.Join("out", "P2-fhir.JSON"), OutputPath("P2.JSON", "out"))
}

func TestRunFolder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	in := writeInputs(t, map[string]string{
		"a.json":     `{"id": {"1a": "1"}}`,
		"b.json":     `{"id": {"1a": "2"}, "skip": {"1a": null}}`,
		"c.JSON":     `{"id": {"1a": "3"}}`,
		"readme.txt": `not an input`,
	})
	out := t.TempDir()
	logs := t.TempDir()
	clock := func() time.Time { return time.Date(2024, 3, 9, 10, 11, 12, 345_000_000, time.UTC) }
	r := New(fakeProcessor{}, WithErrorLogDir(logs), WithClock(clock))

	// --- Act ---
	report, err := r.RunFolder(context.Background(), in, out)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(in, "a.json"), filepath.Join(in, "c.JSON")}, report.Processed)
	require.Equal(t, []string{filepath.Join(in, "b.json")}, report.Skipped)

	require.FileExists(t, filepath.Join(out, "a-fhir.json"))
	require.FileExists(t, filepath.Join(out, "c-fhir.JSON"))
	require.NoFileExists(t, filepath.Join(out, "b-fhir.json"))

	require.Equal(t, filepath.Join(logs, "errors_2024_03_09_10_11_12_345Z.txt"), report.ErrorLog)
	causes, err := os.ReadFile(report.ErrorLog)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(causes), "Skipping "+filepath.Join(in, "b.json")))
	require.Contains(t, string(causes), "unexpected input: date missing in assessment 1a")

	failed, err := os.ReadFile(report.FailedFilesLog)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(in, "b.json"), string(failed))
}

func TestRunFolder_NoSkipsWritesNoLogs(t *testing.T) {
	t.Parallel()

	in := writeInputs(t, map[string]string{"a.json": `{"id": {"1a": "1"}}`})
	logs := t.TempDir()

	report, err := New(fakeProcessor{}, WithErrorLogDir(logs)).RunFolder(context.Background(), in, t.TempDir())

	require.NoError(t, err)
	require.Empty(t, report.ErrorLog)
	entries, err := os.ReadDir(logs)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunFolder_AbortsOnOtherErrors(t *testing.T) {
	t.Parallel()

	in := writeInputs(t, map[string]string{
		"a.json": `{"id": {"1a": "1"}}`,
		"b.json": `{"id": {"1a": "2"}, "boom": {"1a": null}}`,
		"c.json": `{"id": {"1a": "3"}}`,
	})
	out := t.TempDir()

	report, err := New(fakeProcessor{}).RunFolder(context.Background(), in, out)

	require.ErrorIs(t, err, errBoom)
	require.Contains(t, err.Error(), "aborting transformation due to an error while processing")
	require.Equal(t, []string{filepath.Join(in, "a.json")}, report.Processed)
	require.NoFileExists(t, filepath.Join(out, "c-fhir.json"), "files after the failure are not processed")
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CET", 3600)
	got := Timestamp(time.Date(2024, 12, 31, 23, 59, 58, 7_000_000, loc))

	require.Equal(t, "2024_12_31_22_59_58_007Z", got)
}
