package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the error taxonomy. Components wrap collaborator
// failures with one of these so controllers and retry policies can classify
// them with errors.Is without inspecting collaborator-specific detail.
var (
	// ErrInvalidRequest marks bad client input. Never retried, maps to 4xx.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEmbeddingService marks an unreachable or misbehaving embedding model.
	ErrEmbeddingService = errors.New("embedding service unavailable")

	// ErrIndexUnavailable marks an unreachable vector index backing store.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrModelService marks an unreachable or misbehaving language model.
	ErrModelService = errors.New("model service unavailable")

	// ErrSessionStore marks an unreachable conversation history store.
	ErrSessionStore = errors.New("session store unavailable")

	// ErrEmptyDocument marks an ingestion call on an empty document.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrConfiguration marks a fatal configuration problem (e.g. embedding
	// dimension mismatch). Never retried.
	ErrConfiguration = errors.New("configuration error")
)

// GenericFailureMessage is the only failure text the chat endpoint exposes.
// Internal detail goes to the logs, never to the client.
const GenericFailureMessage = "unable to generate an answer"

// Wrap attaches a taxonomy sentinel to an underlying error.
func Wrap(kind error, err error) error {
	if err == nil {
		return kind
	}
	return fmt.Errorf("%w: %v", kind, err)
}

// Wrapf attaches a taxonomy sentinel to a formatted message.
func Wrapf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether an error represents transient collaborator
// unavailability worth a bounded retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrEmbeddingService) ||
		errors.Is(err, ErrIndexUnavailable) ||
		errors.Is(err, ErrModelService) ||
		errors.Is(err, ErrSessionStore)
}
