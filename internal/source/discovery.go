package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Discovery lists and reads marker-annotated SDL sources.
type Discovery interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) (string, error)
}

// Load splits every source of disc, in List order.
func Load(ctx context.Context, disc Discovery) ([]*File, error) {
	names, err := disc.List(ctx)
	if err != nil {
		return nil, err
	}
	files := make([]*File, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := disc.Read(ctx, name)
		if err != nil {
			return nil, err
		}
		f, err := Split(name, text)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// FileSystemDiscovery finds .graphql and .gql files below a root directory.
// Source names are slash-separated paths relative to the root.
type FileSystemDiscovery struct {
	root  string
	paths map[string]string
	names []string
}

// NewFileSystemDiscovery walks rootDir once and remembers the sources found.
func NewFileSystemDiscovery(ctx context.Context, rootDir string) (*FileSystemDiscovery, error) {
	d := &FileSystemDiscovery{root: rootDir, paths: make(map[string]string)}
	err := filepath.WalkDir(rootDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if ext := filepath.Ext(entry.Name()); ext != ".graphql" && ext != ".gql" {
			return nil
		}
		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %q: %w", path, err)
		}
		name := filepath.ToSlash(rel)
		d.paths[name] = path
		d.names = append(d.names, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk root directory %q: %w", rootDir, err)
	}
	sort.Strings(d.names)
	return d, nil
}

// List returns the source names in lexical order.
func (d *FileSystemDiscovery) List(ctx context.Context) ([]string, error) {
	return append([]string(nil), d.names...), nil
}

// Read returns the content of a listed source.
func (d *FileSystemDiscovery) Read(ctx context.Context, name string) (string, error) {
	path, ok := d.paths[name]
	if !ok {
		return "", fmt.Errorf("source %q not found", name)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source %q: %w", name, err)
	}
	return string(content), nil
}

// InMemorySource is a named source held in memory.
type InMemorySource struct {
	Name    string
	Content string
}

// InMemoryDiscovery serves sources from memory in the order given.
type InMemoryDiscovery struct {
	names    []string
	contents map[string]string
}

func NewInMemoryDiscovery(srcs []InMemorySource) *InMemoryDiscovery {
	d := &InMemoryDiscovery{contents: make(map[string]string)}
	for _, s := range srcs {
		if _, dup := d.contents[s.Name]; !dup {
			d.names = append(d.names, s.Name)
		}
		d.contents[s.Name] = s.Content
	}
	return d
}

// List implements Discovery.
func (d *InMemoryDiscovery) List(ctx context.Context) ([]string, error) {
	return append([]string(nil), d.names...), nil
}

// Read implements Discovery.
func (d *InMemoryDiscovery) Read(ctx context.Context, name string) (string, error) {
	content, ok := d.contents[name]
	if !ok {
		return "", fmt.Errorf("source %q not found", name)
	}
	return content, nil
}
