package queue

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestMakeAndRead(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "0003_TR_b.idf")
	touch(t, dir, "0001_TR_a.idf")
	touch(t, dir, "0002_CV.idf")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "TR_dir"), 0o755))

	qpath := filepath.Join(dir, DefaultFileName)
	names, err := Make(dir, "TR", qpath)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_TR_a.idf", "0003_TR_b.idf"}, names)

	got, err := Read(qpath, true)
	require.NoError(t, err)
	assert.Equal(t, names, got)
}

func TestReadKeepsOrderUnlessSorted(t *testing.T) {
	qpath := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(qpath, []byte("b.idf\r\n\na.idf\n  \n"), 0o644))

	got, err := Read(qpath, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.idf", "a.idf"}, got)

	got, err = Read(qpath, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.idf", "b.idf"}, got)
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope"), true)
	assert.Error(t, err)
}

func TestScanID(t *testing.T) {
	assert.Equal(t, "0001", ScanID("/data/0001_TR_a.idf", 4))
	assert.Equal(t, "ab", ScanID("ab", 4))
	assert.Equal(t, "0001_TR.idf", ScanID("0001_TR.idf", 0))
	assert.Equal(t, "µA01", ScanID("/data/µA01_TR.idf", 4))
	assert.Equal(t, "Zn²⁺", ScanID("Zn²⁺_run.idf", 4))
	assert.True(t, utf8.ValidString(ScanID("éé.idf", 1)))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, []string{filepath.Join("d", "a"), filepath.Join("d", "b")}, Resolve("d", []string{"a", "b"}))
}
