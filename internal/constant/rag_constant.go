package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// AnswerSystemPromptV1 instructs the model to answer strictly from the
	// retrieved context plus the conversation history.
	AnswerSystemPromptV1 = `You are a helpful assistant. Answer the question clearly and concisely using ONLY the reference passages and the conversation history below. Use the history to provide context-aware answers where relevant. If the passages lack the answer, say "I don't have enough information to answer this."`

	// QueryExpansionPromptV1 asks the model for paraphrases of the user
	// question. %d is the number of variants, %s the original question.
	// The JSON-array output contract keeps parsing trivial; anything that
	// fails to parse degrades to single-query retrieval.
	QueryExpansionPromptV1 = `You are an AI assistant. Generate %d different versions of the given user question to retrieve relevant documents from a vector database. Provide them as a JSON array like ["question1", "question2"] and nothing else.
Original question: %s`

	// Ollama defaults
	OllamaDefaultBaseURL        = "http://localhost:11434"
	OllamaDefaultEmbeddingModel = "nomic-embed-text"
	OllamaDefaultChatModel      = "llama3.2"

	// DefaultDocumentID identifies the configured knowledge document when a
	// reindex request does not name one.
	DefaultDocumentID = "primary"
)
