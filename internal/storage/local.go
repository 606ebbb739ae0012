package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Local struct {
	BaseDir   string
	URLPrefix string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{BaseDir: baseDir, URLPrefix: urlPrefix}
}

func (l *Local) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	if err := ctx.Err(); err != nil {
		return PutResult{}, err
	}

	folder := safeFolder(in.Folder)
	dir := filepath.Join(l.BaseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return PutResult{}, err
	}

	name := uuid.NewString() + safeExt(in.Filename)
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return PutResult{}, err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return PutResult{}, err
	}

	key := path.Join(folder, name)
	url := strings.TrimRight(l.URLPrefix, "/") + "/" + key
	return PutResult{Key: key, URL: url}, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	_ = ctx
	dir, name := path.Split(path.Clean("/" + key))
	folder := safeFolder(strings.Trim(dir, "/"))
	return os.Remove(filepath.Join(l.BaseDir, folder, filepath.Base(name)))
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif",
		".mp4", ".webm", ".mov", ".mkv",
		".pdf":
		return ext
	default:
		return ""
	}
}

func safeFolder(folder string) string {
	folder = strings.ToLower(strings.Trim(folder, "/"))
	for _, r := range folder {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return "misc"
		}
	}
	if folder == "" {
		return "misc"
	}
	return folder
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }
