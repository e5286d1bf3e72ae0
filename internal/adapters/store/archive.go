package store

import (
	"archive/tar"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/zerr"
)

// pack writes src as a zstd-compressed tar stream to w. Member names are
// slash-separated paths relative to src, so entries restore cleanly into
// any target directory.
func pack(src string, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return zerr.Wrap(err, "failed to create zstd writer")
	}
	tw := tar.NewWriter(zw)

	walkErr := filepath.WalkDir(src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path) //nolint:gosec // Path comes from walking the cache dir
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		_ = f.Close()
		return err
	})
	if walkErr != nil {
		return zerr.Wrap(walkErr, "failed to archive cache path")
	}

	if err := tw.Close(); err != nil {
		return zerr.Wrap(err, "failed to finalize archive")
	}
	if err := zw.Close(); err != nil {
		return zerr.Wrap(err, "failed to finalize compression")
	}
	return nil
}

// unpack extracts a zstd-compressed tar stream from r into dst, rejecting
// member names that would escape dst.
func unpack(r io.Reader, dst string) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return zerr.Wrap(err, "failed to create zstd reader")
	}
	defer zr.Close()

	if err := os.MkdirAll(dst, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create restore target")
	}

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "failed to read archive")
		}

		target, err := safeJoin(dst, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()); err != nil {
				return zerr.Wrap(err, "failed to create directory")
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return zerr.Wrap(err, "failed to create parent directory")
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return zerr.Wrap(err, "failed to restore symlink")
			}
		case tar.TypeReg:
			if err := restoreFile(target, hdr, tr); err != nil {
				return err
			}
		default:
			// Other member types (devices, fifos) never appear in cache
			// archives we wrote ourselves.
			continue
		}
	}
}

func restoreFile(target string, hdr *tar.Header, tr *tar.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create parent directory")
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, hdr.FileInfo().Mode().Perm()) //nolint:gosec // Target is validated by safeJoin
	if err != nil {
		return zerr.Wrap(err, "failed to create file")
	}
	//nolint:gosec // Archive was written by this store; size is bounded by the entry on disk
	if _, err := io.Copy(f, tr); err != nil {
		_ = f.Close()
		return zerr.Wrap(err, "failed to restore file")
	}
	if err := f.Close(); err != nil {
		return zerr.Wrap(err, "failed to close restored file")
	}
	return nil
}

// safeJoin joins name under dst and rejects traversal outside of it.
func safeJoin(dst, name string) (string, error) {
	target := filepath.Join(dst, filepath.FromSlash(name))
	if target != dst && !strings.HasPrefix(target, filepath.Clean(dst)+string(os.PathSeparator)) {
		return "", zerr.With(zerr.New("archive member escapes target"), "name", name)
	}
	return target, nil
}
