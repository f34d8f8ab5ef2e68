package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.csv")
	require.NoError(t, SafeWriteFile(p, []byte("a,b\n")))
	require.NoError(t, SafeWriteFile(p, []byte("c,d\n")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "c,d\n", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	err := SafeWriteFile(filepath.Join(t.TempDir(), "nope", "out.csv"), []byte("x"))
	assert.Error(t, err)
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"top_n": 10})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"top_n\": 10\n}", string(b))
}

func TestResolveOutput(t *testing.T) {
	assert.Equal(t, "x.csv", ResolveOutput("x.csv", "out", "movies_filtered.csv"))
	assert.Equal(t, filepath.Join("out", "movies_filtered.csv"), ResolveOutput("", "out", "movies_filtered.csv"))
	assert.Equal(t, "movies_filtered.csv", ResolveOutput("", "", "movies_filtered.csv"))
}
