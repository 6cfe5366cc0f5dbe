package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "fellowship.CHAT_TURN", Subject("CHAT_TURN"))
	assert.Equal(t, "fellowship.*", Subject("*"))
}
