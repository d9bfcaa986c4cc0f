package storage_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/krishkalaria12/snap-upload/apperror"
	"github.com/krishkalaria12/snap-upload/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirCreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "uploads")

	require.NoError(t, storage.EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// second call on an existing directory is a no-op
	require.NoError(t, storage.EnsureDir(dir))
}

func TestEnsureDirRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	assert.Error(t, storage.EnsureDir(path))
}

func TestValidateMediaType(t *testing.T) {
	for _, mt := range []string{"image/jpeg", "image/png", "image/gif", "image/webp", "IMAGE/PNG", "image/png; charset=binary"} {
		assert.NoError(t, storage.ValidateMediaType(mt), mt)
	}
	for _, mt := range []string{"text/plain", "application/pdf", "image/svg+xml", "image/bmp", ""} {
		err := storage.ValidateMediaType(mt)
		require.Error(t, err, mt)
		assert.True(t, apperror.Is(err, apperror.KindValidation), mt)
	}
}

func TestExtension(t *testing.T) {
	cases := []struct {
		name, mediaType, want string
	}{
		{"photo.png", "image/png", ".png"},
		{"Holiday.JPEG", "image/jpeg", ".jpeg"},
		{"../../etc/passwd.gif", "image/gif", ".gif"},
		{`C:\Users\me\cat.webp`, "image/webp", ".webp"},
		{"noext", "image/jpeg", ".jpg"},
		{"noext", "text/plain", ""},
		{"", "image/webp", ".webp"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, storage.Extension(tc.name, tc.mediaType), tc.name)
	}
}

func TestGenerateFilenameFormat(t *testing.T) {
	name := storage.GenerateFilename("photo.png", "image/png")
	assert.Regexp(t, regexp.MustCompile(`^image-\d+-[0-9a-f]{12}\.png$`), name)
}

func TestGenerateFilenameConcurrentUnique(t *testing.T) {
	const workers = 16
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				name := storage.GenerateFilename("a.png", "image/png")
				mu.Lock()
				seen[name] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestSaveWritesFile(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir(), 1024)
	require.NoError(t, err)

	content := bytes.Repeat([]byte{0xAB}, 1024)
	stored, err := local.Save(bytes.NewReader(content), "photo.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, int64(1024), stored.Size)
	assert.True(t, strings.HasSuffix(stored.Filename, ".png"))
	assert.Equal(t, filepath.Join(local.Dir(), stored.Filename), stored.Path)

	onDisk, err := os.ReadFile(stored.Path)
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
}

func TestSaveRejectsOversizedAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocal(dir, 1024)
	require.NoError(t, err)

	_, err = local.Save(bytes.NewReader(make([]byte, 1025)), "big.png", "image/png")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestSaveReadFailureIsInternalAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocal(dir, 1024)
	require.NoError(t, err)

	_, err = local.Save(failingReader{}, "a.png", "image/png")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInternal))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocal(dir, 1024)
	require.NoError(t, err)
	local.WithNameFunc(func(string, string) string { return "fixed.png" })

	_, err = local.Save(strings.NewReader("first"), "a.png", "image/png")
	require.NoError(t, err)

	_, err = local.Save(strings.NewReader("second"), "b.png", "image/png")
	require.Error(t, err)

	// the failed save must not remove or modify the existing file
	onDisk, err := os.ReadFile(filepath.Join(dir, "fixed.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(onDisk))
}
