package snapshot

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Copy merges the tree at src into dst, skipping whatever filter excludes.
// dst and missing parents are created. Symlinks are recreated as links.
func Copy(src, dst string, filter Filter) (Stats, error) {
	var stats Stats

	info, err := os.Stat(src)
	if err != nil {
		return stats, fmt.Errorf("snapshot: stat source: %w", err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("snapshot: source %s is not a directory", src)
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return stats, fmt.Errorf("snapshot: create %s: %w", dst, err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return stats, err
	}

	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		// Never descend into the destination when it lives inside src.
		if d.IsDir() {
			if abs, err := filepath.Abs(p); err == nil && abs == absDst {
				return filepath.SkipDir
			}
		}
		slashRel := filepath.ToSlash(rel)
		if filter != nil && filter.Exclude(slashRel, d) {
			stats.Excluded++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			if err := copySymlink(p, target); err != nil {
				return err
			}
			stats.Symlinks++
		case d.IsDir():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, fi.Mode().Perm()|0700); err != nil {
				return err
			}
			stats.Dirs++
		case d.Type().IsRegular():
			n, err := copyFile(p, target)
			if err != nil {
				return err
			}
			stats.Files++
			stats.Bytes += n
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("snapshot: copy %s -> %s: %w", src, dst, err)
	}
	return stats, nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, err
	}
	// A link left by an earlier archive must not be written through.
	if fi, err := os.Lstat(dst); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(dst); err != nil {
			return 0, err
		}
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, err
	}
	return n, os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	if _, err := os.Lstat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return err
		}
	}
	return os.Symlink(link, dst)
}
