package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionAppendKeepsBound(t *testing.T) {
	s := &Session{ID: "s1"}

	for i := 0; i < 15; i++ {
		s.Append(10, Turn{Role: RoleUser, Content: fmt.Sprintf("msg-%d", i)})
	}

	assert.Len(t, s.Turns, 10)
	// Oldest surviving turn is msg-5, newest is msg-14, oldest first.
	assert.Equal(t, "msg-5", s.Turns[0].Content)
	assert.Equal(t, "msg-14", s.Turns[9].Content)
}

func TestSessionAppendPairStaysOrdered(t *testing.T) {
	s := &Session{ID: "s1"}
	s.Append(10,
		Turn{Role: RoleUser, Content: "question"},
		Turn{Role: RoleAssistant, Content: "answer"},
	)

	assert.Len(t, s.Turns, 2)
	assert.Equal(t, RoleUser, s.Turns[0].Role)
	assert.Equal(t, RoleAssistant, s.Turns[1].Role)
}

func TestSessionAppendNoBound(t *testing.T) {
	s := &Session{ID: "s1"}
	for i := 0; i < 12; i++ {
		s.Append(0, Turn{Role: RoleUser, Content: "x"})
	}
	assert.Len(t, s.Turns, 12)
}
