package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile_WritesContentAndLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.js")

	require.NoError(t, atomicWriteFile(dest, []byte("console.log(1);"), 0o644))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1);", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.js", entries[0].Name())
}

func TestAtomicWriteFile_LeavesExistingArtifactUntouchedOnFailure(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.css")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	// A destination directory that doesn't exist forces CreateTemp to
	// fail for a second out.css one level below dest, simulating
	// buildOnce's writes loop hitting an I/O error: the error is returned
	// and the existing artifact at dest keeps its content.
	err := atomicWriteFile(filepath.Join(dir, "missing-subdir", "out.css"), []byte("new"), 0o644)
	assert.Error(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}
