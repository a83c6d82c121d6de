package services

import (
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/Nandeesh-nh/lan-chat/pkg/utils"
)

// MaxFileSize is the upload cap (50 MiB).
const MaxFileSize = 50 << 20

// allowedExtensions is the upload allow-list, lowercase, without dots.
var allowedExtensions = map[string]bool{
	"txt": true, "pdf": true, "png": true, "jpg": true, "jpeg": true,
	"gif": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true, "zip": true, "rar": true,
}

// FileStore validates and stores uploaded payloads on a filesystem and hands
// back an opaque storage ref the message log can attach to file messages.
// Production uses an OsFs rooted at the upload directory; tests use a
// MemMapFs.
type FileStore struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

// NewFileStore creates the store and ensures the upload directory exists.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{fs: fs, dir: dir, now: time.Now}, nil
}

// Validate checks the extension allow-list and the size cap before anything
// is written.
func (f *FileStore) Validate(filename string, sizeBytes int64) error {
	name := strings.TrimSpace(filename)
	if name == "" {
		return ErrNoFilename
	}
	dot := strings.LastIndex(name, ".")
	if dot < 0 || dot == len(name)-1 {
		return ErrFileTypeBlocked
	}
	if !allowedExtensions[strings.ToLower(name[dot+1:])] {
		return ErrFileTypeBlocked
	}
	if sizeBytes > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// Store writes the payload under a collision-resistant ref:
// <unix-seconds>_<8-char-uuid>_<sanitized-name>. The uuid segment never
// contains an underscore, so Resolve can strip the two leading segments to
// recover the original name no matter what the name itself contains.
func (f *FileStore) Store(r io.Reader, sender, filename string) (string, int64, error) {
	sanitized := utils.SanitizeFilename(filename)
	ref := fmt.Sprintf("%d_%s_%s", f.now().Unix(), uuid.NewString()[:8], sanitized)

	dst, err := f.fs.Create(path.Join(f.dir, ref))
	if err != nil {
		return "", 0, err
	}
	written, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		f.fs.Remove(path.Join(f.dir, ref))
		return "", 0, err
	}

	log.Printf("stored file %s (%d bytes) from %s", ref, written, sender)
	return ref, written, nil
}

// Resolve opens a stored payload by ref and recovers the original filename.
// Refs that escape the upload directory or do not exist yield ErrFileNotFound.
func (f *FileStore) Resolve(ref string) (afero.File, string, error) {
	if ref == "" || ref == "." || ref == ".." || strings.ContainsAny(ref, "/\\") {
		return nil, "", ErrFileNotFound
	}

	file, err := f.fs.Open(path.Join(f.dir, ref))
	if err != nil {
		return nil, "", ErrFileNotFound
	}
	return file, OriginalFilename(ref), nil
}

// OriginalFilename strips the timestamp and uuid segments the store prefixed
// at Store time. Refs without the expected prefix come back unchanged.
func OriginalFilename(ref string) string {
	parts := strings.SplitN(ref, "_", 3)
	if len(parts) == 3 {
		return parts[2]
	}
	return ref
}
