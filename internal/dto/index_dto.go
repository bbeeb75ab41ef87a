package dto

type UpdateIndexRequest struct {
	DocumentId string `json:"document_id,omitempty"`
	Path       string `json:"path,omitempty"`
}

type UpdateIndexResponse struct {
	Message    string `json:"message"`
	DocumentId string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

// ReindexJobMessage is the payload carried on the in-process reindex queue.
type ReindexJobMessage struct {
	DocumentId string `json:"document_id"`
	Path       string `json:"path"`
}
