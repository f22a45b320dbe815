package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestLocalUploadOpenStat(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), "http://cdn.test/")
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}

	ref, err := s.Upload(ctx, "images/look_1.jpg", bytes.NewBufferString("hello"), Metadata{"id": "abc"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ref.Path != "images/look_1.jpg" || ref.SizeBytes != 5 || ref.SHA256 == "" {
		t.Fatalf("unexpected ref: %#v", ref)
	}

	rc, err := s.Open(ctx, ref.Path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %q", string(data))
	}

	info, err := s.Stat(ctx, ref.Path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Metadata["id"] != "abc" || info.SHA256 != ref.SHA256 {
		t.Fatalf("unexpected info: %#v", info)
	}
	if info.ContentType != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", info.ContentType)
	}

	url, err := s.ResolveURL(ctx, ref)
	if err != nil {
		t.Fatalf("resolve url: %v", err)
	}
	if url != "http://cdn.test/blobs/images/look_1.jpg" {
		t.Fatalf("unexpected url: %s", url)
	}
}

func TestLocalUploadOverwrites(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}

	if _, err := s.Upload(ctx, "items/tee", bytes.NewBufferString("v1"), Metadata{"id": "one"}); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	first, err := s.Stat(ctx, "items/tee")
	if err != nil {
		t.Fatalf("stat first: %v", err)
	}
	if _, err := s.Upload(ctx, "items/tee", bytes.NewBufferString("version two"), nil); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	second, err := s.Stat(ctx, "items/tee")
	if err != nil {
		t.Fatalf("stat second: %v", err)
	}
	if second.SizeBytes != int64(len("version two")) {
		t.Fatalf("expected overwritten size, got %d", second.SizeBytes)
	}
	if len(second.Metadata) != 0 {
		t.Fatalf("expected metadata replaced, got %#v", second.Metadata)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at should survive overwrite: %v != %v", second.CreatedAt, first.CreatedAt)
	}

	url, err := s.ResolveURL(ctx, BlobRef{Path: "items/tee"})
	if err != nil {
		t.Fatalf("resolve url: %v", err)
	}
	if url != "/blobs/items/tee" {
		t.Fatalf("unexpected relative url: %s", url)
	}
}

func TestLocalListByPrefix(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	for _, p := range []string{"images/b.jpg", "images/a.jpg", "items/tee"} {
		if _, err := s.Upload(ctx, p, bytes.NewBufferString(p), Metadata{"id": p}); err != nil {
			t.Fatalf("upload %s: %v", p, err)
		}
	}

	infos, err := s.List(ctx, "images/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Path != "images/a.jpg" || infos[1].Path != "images/b.jpg" {
		t.Fatalf("unexpected listing: %#v", infos)
	}
}

func TestLocalRejectsUnsafePaths(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "empty", path: " "},
		{name: "absolute", path: "/etc/passwd"},
		{name: "parent", path: "../escape"},
		{name: "nested parent", path: "images/../../escape"},
		{name: "backslash", path: `images\x`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Upload(ctx, tc.path, bytes.NewBufferString("x"), nil); !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("expected ErrInvalidPath for %q, got %v", tc.path, err)
			}
		})
	}
}

func TestLocalMissingObject(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	if _, err := s.Open(ctx, "images/none"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from open, got %v", err)
	}
	if _, err := s.Stat(ctx, "images/none"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from stat, got %v", err)
	}
	if _, err := s.ResolveURL(ctx, BlobRef{Path: "images/none"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from resolve, got %v", err)
	}
}
