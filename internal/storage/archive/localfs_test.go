// internal/storage/archive/localfs_test.go
package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/mfaber/hindsight/internal/core"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
}

func TestLocalFS_WriteRead(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte("Date,Open,High,Low,Close\n")

	if err := fs.Write(ctx, "runs/abc/series.csv", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := fs.Read(ctx, "runs/abc/series.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalFS_ReadMissing(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	_, err := fs.Read(context.Background(), "runs/missing/ratios.json")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestLocalFS_RejectsTraversal(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	if err := fs.Write(ctx, "../escape.txt", []byte("x")); err == nil {
		t.Error("expected traversal rejection on write")
	}
	if _, err := fs.Read(ctx, "../../etc/passwd"); err == nil {
		t.Error("expected traversal rejection on read")
	}
}

func TestLocalFS_Exists(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "nonexistent.csv")
	if exists {
		t.Error("expected false for nonexistent artifact")
	}

	fs.Write(ctx, "runs/x/ratios.json", []byte("{}"))
	exists, _ = fs.Exists(ctx, "runs/x/ratios.json")
	if !exists {
		t.Error("expected true for stored artifact")
	}
}

func TestLocalFS_List(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Write(ctx, "runs/a/series.csv", []byte("a"))
	fs.Write(ctx, "runs/a/ratios.json", []byte("{}"))
	fs.Write(ctx, "runs/b/series.csv", []byte("b"))

	paths, err := fs.List(ctx, "runs/a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 paths, got %d: %v", len(paths), paths)
	}

	paths, err = fs.List(ctx, "runs/missing")
	if err != nil || len(paths) != 0 {
		t.Errorf("missing prefix: want empty list, got %v, %v", paths, err)
	}
}

func TestLocalFS_Delete(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Write(ctx, "runs/gone/series.csv", []byte("x"))
	if err := fs.Delete(ctx, "runs/gone/series.csv"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, _ := fs.Exists(ctx, "runs/gone/series.csv")
	if exists {
		t.Error("artifact should be deleted")
	}

	if err := fs.Delete(ctx, "runs/gone/series.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("double delete: want ErrNotFound, got %v", err)
	}
}
