package autolink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapKeysIsDetached(t *testing.T) {
	m := NewMap()
	m.Set("123", &Autolink{ID: "123"})
	m.Set("456", &Autolink{ID: "456"})

	keys := m.Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"123", "456"}, m.Keys())
}

func TestEnrichedMapKeysIsDetached(t *testing.T) {
	m := NewEnrichedMap()
	m.Set("123", EnrichedAutolink{Autolink: &Autolink{ID: "123"}})
	m.Set("456", EnrichedAutolink{Autolink: &Autolink{ID: "456"}})

	keys := m.Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"123", "456"}, m.Keys())
}
