package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	objectsDir = "objects"
	metaDir    = "meta"
	tmpDir     = "tmp"
	metaSuffix = ".json"
	sniffLen   = 512
)

// LocalObjectStore keeps objects in a local directory tree.
// Object bytes live under objects/<path>; metadata sidecars under meta/<path>.json.
type LocalObjectStore struct {
	root      string
	publicURL string
	now       func() time.Time
}

var _ ObjectStore = (*LocalObjectStore)(nil)

// NewLocal creates a local object store rooted at root. publicURL is the base
// used by ResolveURL; empty means server-relative URLs.
func NewLocal(root, publicURL string) (*LocalObjectStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	for _, dir := range []string{objectsDir, metaDir, tmpDir} {
		if err := os.MkdirAll(filepath.Join(abs, dir), 0o755); err != nil {
			return nil, err
		}
	}
	return &LocalObjectStore{
		root:      abs,
		publicURL: strings.TrimRight(strings.TrimSpace(publicURL), "/"),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Upload streams r to path, replacing any previous object and metadata.
func (s *LocalObjectStore) Upload(ctx context.Context, path string, r io.Reader, meta Metadata) (BlobRef, error) {
	var zero BlobRef
	if s == nil {
		return zero, fmt.Errorf("object store is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	clean, err := cleanObjectPath(path)
	if err != nil {
		return zero, err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "put-*")
	if err != nil {
		return zero, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	h := sha256.New()
	head := &prefixBuffer{limit: sniffLen}
	n, err := io.Copy(io.MultiWriter(tmp, h, head), r)
	if err != nil {
		cleanup()
		return zero, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, err
	}

	dst := s.objectPath(clean)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return zero, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return zero, err
	}

	now := s.now()
	info := ObjectInfo{
		Path:        clean,
		SizeBytes:   n,
		SHA256:      hex.EncodeToString(h.Sum(nil)),
		ContentType: http.DetectContentType(head.Bytes()),
		Metadata:    copyMetadata(meta),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if prev, err := s.readMeta(clean); err == nil && !prev.CreatedAt.IsZero() {
		info.CreatedAt = prev.CreatedAt
	}
	if err := s.writeMeta(info); err != nil {
		return zero, fmt.Errorf("write metadata: %w", err)
	}

	return BlobRef{Path: clean, SHA256: info.SHA256, SizeBytes: n}, nil
}

// ResolveURL returns the public download URL for ref.
func (s *LocalObjectStore) ResolveURL(ctx context.Context, ref BlobRef) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanObjectPath(ref.Path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(s.objectPath(clean)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}

	segments := strings.Split(clean, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicURL + "/blobs/" + strings.Join(segments, "/"), nil
}

func (s *LocalObjectStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanObjectPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.objectPath(clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *LocalObjectStore) Stat(ctx context.Context, path string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	clean, err := cleanObjectPath(path)
	if err != nil {
		return ObjectInfo{}, err
	}
	return s.readMeta(clean)
}

func (s *LocalObjectStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	prefix = strings.TrimLeft(strings.TrimSpace(prefix), "/")
	base := filepath.Join(s.root, metaDir)

	var out []ObjectInfo
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		objPath := strings.TrimSuffix(filepath.ToSlash(rel), metaSuffix)
		if !strings.HasPrefix(objPath, prefix) {
			return nil
		}
		info, err := s.readMeta(objPath)
		if err != nil {
			return err
		}
		out = append(out, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LocalObjectStore) objectPath(clean string) string {
	return filepath.Join(s.root, objectsDir, filepath.FromSlash(clean))
}

func (s *LocalObjectStore) metaPath(clean string) string {
	return filepath.Join(s.root, metaDir, filepath.FromSlash(clean)+metaSuffix)
}

func (s *LocalObjectStore) readMeta(clean string) (ObjectInfo, error) {
	data, err := os.ReadFile(s.metaPath(clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ObjectInfo{}, ErrNotFound
		}
		return ObjectInfo{}, err
	}
	var info ObjectInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ObjectInfo{}, fmt.Errorf("decode metadata for %s: %w", clean, err)
	}
	return info, nil
}

func (s *LocalObjectStore) writeMeta(info ObjectInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	dst := s.metaPath(info.Path)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "meta-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func cleanObjectPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidPath)
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, `\`) {
		return "", fmt.Errorf("%w: must be relative", ErrInvalidPath)
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(path)))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(clean, "/../") {
		return "", ErrInvalidPath
	}
	return clean, nil
}

func copyMetadata(meta Metadata) Metadata {
	if len(meta) == 0 {
		return nil
	}
	out := make(Metadata, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

// prefixBuffer keeps the first limit bytes written to it.
type prefixBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (p *prefixBuffer) Write(b []byte) (int, error) {
	if room := p.limit - p.buf.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		p.buf.Write(b[:room])
	}
	return len(b), nil
}

func (p *prefixBuffer) Bytes() []byte {
	return p.buf.Bytes()
}
