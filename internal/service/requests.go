package service

import (
	"github.com/w-h-a/knowledge"
	"github.com/w-h-a/knowledge/store"
)

// scope is shared by every request body: the partition the caller wants
// to read from or write to.
type scope struct {
	Topic     string `json:"topic"`
	Namespace string `json:"namespace"`
}

type file struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type uploadRequest struct {
	scope
	Files []file `json:"files"`
}

type questionRequest struct {
	scope
	Question string `json:"question"`
}

type chatRequest struct {
	scope
	Messages     []knowledge.Message `json:"messages"`
	SystemPrompt string              `json:"systemPrompt"`
	Model        string              `json:"model"`
}

type searchRequest struct {
	scope
	Query string `json:"query"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type uploadResponse struct {
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

type questionResponse struct {
	Message    string   `json:"message"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	References []string `json:"references"`
}

type chatResponse struct {
	Message    string              `json:"message"`
	Text       string              `json:"text"`
	References []string            `json:"references"`
	Messages   []knowledge.Message `json:"messages"`
}

type searchResponse struct {
	Message string        `json:"message"`
	Data    []store.Match `json:"data"`
}
