package knowledge

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Document is a raw piece of source material produced by a loader.
// Immutable once created; the ingestion pipeline never mutates it.
type Document struct {
	Content  string         `json:"content"`
	Path     string         `json:"path"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Answer is the result of a single-turn question.
type Answer struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	References []string `json:"references"`
}

// ChatResult carries the assistant's reply, the updated conversation with
// that reply appended, and the sources the reply was grounded on.
type ChatResult struct {
	Messages   []Message `json:"messages"`
	Text       string    `json:"text"`
	References []string  `json:"references"`
}

// reference returns the document's best identifier for logging, using the
// same precedence as chunk references.
func (d Document) reference() string {
	if ref := Reference(d.Metadata); len(ref) > 0 {
		return ref
	}
	return d.Path
}
