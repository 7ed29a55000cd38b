package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/knowledge/loader"
	"github.com/w-h-a/knowledge/loader/markdown"
	"github.com/w-h-a/knowledge/loader/slack"
)

// batchSize matches the server's per-request document limit.
const batchSize = 10

var (
	cfg struct {
		Loader       string `help:"Loader to use (markdown, slack)" default:"markdown" env:"LOADER"`
		Dir          string `help:"Directory holding the documents to upload" default:"documents" env:"DIR"`
		BaseUrl      string `help:"Site root to rewrite document paths under" default:"" env:"BASE_URL"`
		WorkspaceUrl string `help:"Slack workspace root used to build archive links" default:"" env:"WORKSPACE_URL"`
		Topic        string `help:"Topic to upload the documents into" default:"" env:"TOPIC"`
		Server       string `help:"Address of the knowledge server" default:"http://localhost:3000" env:"SERVER"`
		ApiKeyId     string `help:"Identity key sent with each request" default:"" env:"API_KEY_ID"`
	}
)

type uploadRequest struct {
	Topic string        `json:"topic,omitempty"`
	Files []loader.File `json:"files"`
}

type uploadResponse struct {
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
	Error   string `json:"error"`
}

func main() {
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)

	ctx := context.Background()

	files, err := newLoader().Load(ctx)
	if err != nil {
		log.Fatalf("failed to load documents: %v", err)
	}

	fmt.Printf("Loaded %d documents from %s\n", len(files), cfg.Dir)

	total := 0

	for start := 0; start < len(files); start += batchSize {
		end := min(start+batchSize, len(files))
		batch := files[start:end]

		fmt.Printf("Uploading batch of %d documents...\n", len(batch))

		rsp, err := upload(ctx, batch)
		if err != nil {
			log.Fatalf("failed to upload batch: %v", err)
		}
		if len(rsp.Error) > 0 {
			log.Fatalf("server rejected batch: %s", rsp.Error)
		}

		total += rsp.Chunks
	}

	fmt.Printf("Done: %d documents split into %d chunks\n", len(files), total)
}

func upload(ctx context.Context, batch []loader.File) (*uploadResponse, error) {
	body, err := json.Marshal(uploadRequest{
		Topic: cfg.Topic,
		Files: batch,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Server+"/upload", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if len(cfg.ApiKeyId) > 0 {
		req.Header.Set("X-Api-Key-Id", cfg.ApiKeyId)
	}

	httpRsp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpRsp.Body.Close()

	rsp := &uploadResponse{}
	if err := json.NewDecoder(httpRsp.Body).Decode(rsp); err != nil {
		return nil, err
	}

	return rsp, nil
}

func newLoader() loader.Loader {
	switch cfg.Loader {
	case "markdown":
		return markdown.NewLoader(
			loader.WithDir(cfg.Dir),
			loader.WithBaseUrl(cfg.BaseUrl),
		)
	case "slack":
		return slack.NewLoader(
			loader.WithDir(cfg.Dir),
			loader.WithWorkspaceUrl(cfg.WorkspaceUrl),
		)
	default:
		panic(fmt.Sprintf("unknown loader %q", cfg.Loader))
	}
}
