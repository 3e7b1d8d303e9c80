package entities

// Document is a unit of source content produced by a content loader.
// It is immutable once created and consumed once by the script workflow.
type Document struct {
	Title    string                 `json:"title,omitempty"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
