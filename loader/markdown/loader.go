package markdown

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/w-h-a/knowledge/loader"
)

var validExtensions = map[string]bool{
	".md":  true,
	".mdx": true,
}

type markdownLoader struct {
	options loader.Options
}

func (l *markdownLoader) Load(ctx context.Context) ([]loader.File, error) {
	var files []loader.File

	err := filepath.WalkDir(l.options.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !validExtensions[filepath.Ext(path)] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(l.options.Dir, path)
		if err != nil {
			return err
		}

		files = append(files, loader.File{
			Path:    l.pathToUrl(filepath.ToSlash(rel)),
			Content: string(data),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// pathToUrl rewrites a relative document path to its public URL. Blog and
// docs trees map onto the matching site sections; knowledge pages are
// published under docs. Anything else keeps its bare path.
func (l *markdownLoader) pathToUrl(path string) string {
	path = strings.TrimSuffix(path, filepath.Ext(path))

	switch {
	case len(l.options.BaseUrl) == 0:
		return path
	case strings.HasPrefix(path, "blog/"):
		return l.options.BaseUrl + "/blog/" + strings.TrimPrefix(path, "blog/")
	case strings.HasPrefix(path, "docs/"):
		return l.options.BaseUrl + "/docs/" + strings.TrimPrefix(path, "docs/")
	case strings.HasPrefix(path, "knowledge/"):
		return l.options.BaseUrl + "/docs/" + path
	default:
		return path
	}
}

func NewLoader(opts ...loader.Option) loader.Loader {
	options := loader.NewOptions(opts...)

	if len(options.Dir) == 0 {
		panic("a directory is required")
	}

	return &markdownLoader{
		options: options,
	}
}
