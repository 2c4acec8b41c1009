package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriterRotates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.log")
	w, err := Open(path, 16)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	_, err = w.Write([]byte(strings.Repeat("a", 10)))
	require.NoError(t, err)
	_, err = w.Write([]byte(strings.Repeat("b", 10)))
	require.NoError(t, err)
	_, err = w.Write([]byte("c"))
	require.NoError(t, err)

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 10)+strings.Repeat("b", 10), string(backup))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c", string(current))
}

func TestOpenRotatesOversizedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 32)), 0644))

	w, err := Open(path, 16)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	_, err = os.Stat(path + ".1")
	assert.NoError(t, err)
}

func TestRotateFailureKeepsWriting(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.Mkdir(dir, 0755))
	path := filepath.Join(dir, "app.log")

	w, err := Open(path, 16)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	var errs bytes.Buffer
	w.errOut = &errs

	require.NoError(t, os.RemoveAll(dir))

	n, err := w.Write([]byte(strings.Repeat("a", 20)))
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Contains(t, errs.String(), "[logging] rotate "+path)

	n, err = w.Write([]byte("after"))
	require.NoError(t, err, "the original handle is still usable")
	assert.Equal(t, 5, n)
	assert.Equal(t, 1, strings.Count(errs.String(), "\n"), "no retry until maxSize more bytes")
}
