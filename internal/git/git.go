// Package git materializes revisions of a git repository so two versions of
// a program can be matched without touching the working tree.
package git

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var ErrUnsafePath = errors.New("archive entry escapes target directory")

// ResolveRef returns the full commit hash ref points to in repo.
func ResolveRef(ctx context.Context, repo, ref string) (string, error) {
	out, err := run(ctx, repo, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Export writes the tree of ref into dir, which must exist.
func Export(ctx context.Context, repo, ref, dir string) error {
	out, err := run(ctx, repo, "archive", "--format=tar", ref)
	if err != nil {
		return err
	}
	return untar(bytes.NewReader(out), dir)
}

// ExportTemp exports ref into a fresh temporary directory. The caller
// removes it with the returned cleanup function.
func ExportTemp(ctx context.Context, repo, ref string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "mapper-git-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }
	if err := Export(ctx, repo, ref, dir); err != nil {
		cleanup()
		return "", nil, err
	}
	return dir, cleanup, nil
}

func run(ctx context.Context, repo string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", repo}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func untar(r io.Reader, dir string) error {
	dir = filepath.Clean(dir)
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target := filepath.Join(dir, filepath.FromSlash(hdr.Name))
		if target != dir && !strings.HasPrefix(target, dir+string(os.PathSeparator)) {
			return fmt.Errorf("%s: %w", hdr.Name, ErrUnsafePath)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeFile(target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		}
		// Symlinks and the pax global header are skipped.
	}
}

func writeFile(path string, r io.Reader, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
