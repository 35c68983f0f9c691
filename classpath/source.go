package classpath

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const classSuffix = ".class"

// source is one classpath entry.
type source interface {
	// open returns the bytes of the class with the given internal name, or
	// an error wrapping fs.ErrNotExist.
	open(name string) ([]byte, error)
	names() ([]string, error)
	String() string
	Close() error
}

func openSource(path string) (source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("classpath entry: %w", err)
	}
	if info.IsDir() {
		return dirSource(path), nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jar", ".zip":
		return openArchive(path)
	}
	return nil, fmt.Errorf("classpath entry %s: unsupported file type (expected a directory, .jar or .zip)", path)
}

type dirSource string

func (d dirSource) String() string { return string(d) }
func (d dirSource) Close() error   { return nil }

// open refuses names that are not plain slash-separated paths below the
// directory, such as "../x" or "/x".
func (d dirSource) open(name string) ([]byte, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("%s: invalid class name %q: %w", d, name, fs.ErrNotExist)
	}
	return os.ReadFile(filepath.Join(string(d), filepath.FromSlash(name)+classSuffix))
}

func (d dirSource) names() ([]string, error) {
	var out []string
	err := filepath.WalkDir(string(d), func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(p) != classSuffix {
			return nil
		}
		rel, err := filepath.Rel(string(d), p)
		if err != nil {
			return err
		}
		out = append(out, strings.TrimSuffix(filepath.ToSlash(rel), classSuffix))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d, err)
	}
	sort.Strings(out)
	return out, nil
}

// archiveSource is a jar or zip file, kept open for the lifetime of the
// loader. Entries are read through the archive's ReaderAt, so concurrent
// opens are safe.
type archiveSource struct {
	path    string
	archive *zip.ReadCloser
	entries map[string]*zip.File
}

func openArchive(path string) (*archiveSource, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	a := &archiveSource{path: path, archive: r, entries: make(map[string]*zip.File)}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, classSuffix) {
			continue
		}
		// Versioned entries of multi-release jars shadow nothing here.
		if strings.HasPrefix(f.Name, "META-INF/") {
			continue
		}
		a.entries[strings.TrimSuffix(f.Name, classSuffix)] = f
	}
	return a, nil
}

func (a *archiveSource) String() string { return a.path }
func (a *archiveSource) Close() error   { return a.archive.Close() }

func (a *archiveSource) open(name string) ([]byte, error) {
	f, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s!/%s%s: %w", a.path, name, classSuffix, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func (a *archiveSource) names() ([]string, error) {
	out := make([]string, 0, len(a.entries))
	for name := range a.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
