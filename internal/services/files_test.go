package services

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(afero.NewMemMapFs(), "uploads")
	require.NoError(t, err)
	return fs
}

func TestValidate(t *testing.T) {
	fs := newMemFileStore(t)

	assert.NoError(t, fs.Validate("report.pdf", 1024))
	assert.NoError(t, fs.Validate("PHOTO.JPG", 1024))

	assert.ErrorIs(t, fs.Validate("", 10), ErrNoFilename)
	assert.ErrorIs(t, fs.Validate("noextension", 10), ErrFileTypeBlocked)
	assert.ErrorIs(t, fs.Validate("script.exe", 10), ErrFileTypeBlocked)
	assert.ErrorIs(t, fs.Validate("trailingdot.", 10), ErrFileTypeBlocked)
	assert.ErrorIs(t, fs.Validate("big.zip", MaxFileSize+1), ErrFileTooLarge)
	assert.NoError(t, fs.Validate("exact.zip", MaxFileSize))
}

func TestStoreAndResolve(t *testing.T) {
	fs := newMemFileStore(t)

	ref, size, err := fs.Store(strings.NewReader("payload"), "alice", "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)
	assert.True(t, strings.HasSuffix(ref, "_notes.txt"), "ref %q keeps the sanitized name", ref)

	file, original, err := fs.Resolve(ref)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, "notes.txt", original)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestStoreRefsDoNotCollide(t *testing.T) {
	fs := newMemFileStore(t)

	a, _, err := fs.Store(strings.NewReader("a"), "alice", "same.txt")
	require.NoError(t, err)
	b, _, err := fs.Store(strings.NewReader("b"), "alice", "same.txt")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestResolveRejectsBadRefs(t *testing.T) {
	fs := newMemFileStore(t)

	for _, ref := range []string{"", "../users.json", "a/b.txt", `a\b.txt`, "missing.txt"} {
		_, _, err := fs.Resolve(ref)
		assert.ErrorIs(t, err, ErrFileNotFound, "ref %q", ref)
	}
}

func TestOriginalFilename(t *testing.T) {
	assert.Equal(t, "notes.txt", OriginalFilename("1700000000_abcd1234_notes.txt"))
	// underscores inside the original name survive the prefix strip
	assert.Equal(t, "my_notes_v2.txt", OriginalFilename("1700000000_abcd1234_my_notes_v2.txt"))
	// refs without the synthetic prefix come back unchanged
	assert.Equal(t, "plain.txt", OriginalFilename("plain.txt"))
}
