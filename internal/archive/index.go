package archive

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrVersionNotFound is returned by Lookup for an unknown base version.
var ErrVersionNotFound = stderrors.New("archive: version not found")

// Folder is one populated archive folder.
type Folder struct {
	// Name is the folder name: "latest", a dev number or a timestamp.
	Name string `json:"name"`

	// Path is relative to the archive root, slash separated.
	Path string `json:"path"`

	// Files are the file names in the folder, sorted.
	Files []string `json:"files"`
}

// VersionEntry describes one base version directory.
type VersionEntry struct {
	Version   string   `json:"version"`
	Latest    *Folder  `json:"latest,omitempty"`
	DevLatest *Folder  `json:"dev_latest,omitempty"`
	DevBuilds []Folder `json:"dev_builds"`
	Snapshots []Folder `json:"snapshots"`
}

// Index lists every base version under root, sorted by name. A missing
// root yields an empty index.
func Index(root string) ([]VersionEntry, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []VersionEntry{}, nil
		}
		return nil, err
	}

	index := []VersionEntry{}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		entry, err := readVersion(root, e.Name())
		if err != nil {
			return nil, err
		}
		index = append(index, *entry)
	}
	return index, nil
}

// Lookup reads a single base version.
func Lookup(root, name string) (*VersionEntry, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, ErrVersionNotFound
	}
	info, err := os.Stat(filepath.Join(root, name))
	if err != nil || !info.IsDir() {
		return nil, ErrVersionNotFound
	}
	return readVersion(root, name)
}

func readVersion(root, name string) (*VersionEntry, error) {
	entry := &VersionEntry{
		Version:   name,
		DevBuilds: []Folder{},
		Snapshots: []Folder{},
	}

	var err error
	if entry.Latest, err = readFolder(root, name, LatestDir); err != nil {
		return nil, err
	}
	if entry.DevLatest, err = readFolder(root, name, DevBuildsDir, LatestDir); err != nil {
		return nil, err
	}
	if entry.DevBuilds, err = readChildren(root, name, DevBuildsDir); err != nil {
		return nil, err
	}
	if entry.Snapshots, err = readChildren(root, name, AllBuildsDir); err != nil {
		return nil, err
	}
	return entry, nil
}

// readChildren lists the folders below <root>/<parts...>, skipping "latest".
func readChildren(root string, parts ...string) ([]Folder, error) {
	dir := filepath.Join(append([]string{root}, parts...)...)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Folder{}, nil
		}
		return nil, err
	}

	folders := []Folder{}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == LatestDir {
			continue
		}
		f, err := readFolder(root, append(append([]string(nil), parts...), e.Name())...)
		if err != nil {
			return nil, err
		}
		if f != nil {
			folders = append(folders, *f)
		}
	}
	return folders, nil
}

// readFolder returns nil when the folder does not exist.
func readFolder(root string, parts ...string) (*Folder, error) {
	rel := filepath.Join(parts...)
	entries, err := os.ReadDir(filepath.Join(root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	f := &Folder{
		Name:  parts[len(parts)-1],
		Path:  filepath.ToSlash(rel),
		Files: []string{},
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			f.Files = append(f.Files, e.Name())
		}
	}
	sort.Strings(f.Files)
	return f, nil
}
