package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/w-h-a/knowledge/loader"
)

// metadataFiles are the export-level files that hold no messages.
var metadataFiles = map[string]bool{
	"channels.json":         true,
	"users.json":            true,
	"integration_logs.json": true,
	"canvases.json":         true,
}

type channel struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type message struct {
	Text string `json:"text"`
	Ts   string `json:"ts"`
	User string `json:"user"`
}

type slackLoader struct {
	options loader.Options
}

func (l *slackLoader) Load(ctx context.Context) ([]loader.File, error) {
	channelIds, err := l.channelIdMap()
	if err != nil {
		return nil, err
	}

	var files []loader.File

	err = filepath.WalkDir(l.options.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(path) != ".json" || metadataFiles[filepath.Base(path)] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var messages []message
		if err := json.Unmarshal(data, &messages); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		channelName := filepath.Base(filepath.Dir(path))

		for _, m := range messages {
			files = append(files, loader.File{
				Path:    l.messageSource(channelIds, channelName, m),
				Content: m.Text,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// channelIdMap reads the export's channel manifest so archive links can be
// built from channel names.
func (l *slackLoader) channelIdMap() (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(l.options.Dir, "channels.json"))
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	} else if err != nil {
		return nil, err
	}

	var channels []channel
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, err
	}

	ids := make(map[string]string, len(channels))
	for _, c := range channels {
		ids[c.Name] = c.Id
	}

	return ids, nil
}

func (l *slackLoader) messageSource(channelIds map[string]string, channelName string, m message) string {
	if len(l.options.WorkspaceUrl) > 0 {
		return fmt.Sprintf(
			"%s/archives/%s/p%s",
			l.options.WorkspaceUrl,
			channelIds[channelName],
			strings.ReplaceAll(m.Ts, ".", ""),
		)
	}
	return fmt.Sprintf("%s - %s - %s", channelName, m.User, m.Ts)
}

func NewLoader(opts ...loader.Option) loader.Loader {
	options := loader.NewOptions(opts...)

	if len(options.Dir) == 0 {
		panic("a directory is required")
	}

	return &slackLoader{
		options: options,
	}
}
