package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Smallest valid PNG header; enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLoad_SniffsContentType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "avatar.png", f.Name)
	require.Equal(t, "image/png", f.ContentType)
	require.Equal(t, pngHeader, f.Data)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.png"))
	require.Error(t, err)

	_, err = Load(dir)
	require.Error(t, err)

	big := filepath.Join(dir, "big.bin")
	fh, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, fh.Truncate(MaxUploadSize+1))
	require.NoError(t, fh.Close())

	_, err = Load(big)
	require.ErrorIs(t, err, ErrTooLarge)
}
