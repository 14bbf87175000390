package dropdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleIsItsOwnInverse(t *testing.T) {
	starts := []Selection{None(), Multi("a"), Multi("a", "b", "c")}
	for _, start := range starts {
		for _, k := range []string{"a", "b", "z"} {
			twice := start.Toggle(k).Toggle(k)
			assert.Truef(t, start.Equal(twice), "toggle %q twice on %v gave %v", k, start.Keys(), twice.Keys())
		}
	}
}

func TestToggleDoesNotMutateReceiver(t *testing.T) {
	s := Multi("a", "b")
	_ = s.Toggle("a")
	_ = s.Toggle("c")
	assert.Equal(t, []string{"a", "b"}, s.Keys())
}

func TestMultiDropsBlanksAndRepeats(t *testing.T) {
	s := Multi("a", "", "b", "a")
	assert.Equal(t, []string{"a", "b"}, s.Keys())
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has(""))
}

func TestSingle(t *testing.T) {
	k, ok := Single("7").Key()
	assert.True(t, ok)
	assert.Equal(t, "7", k)

	assert.True(t, Single("").Empty())
	_, ok = None().Key()
	assert.False(t, ok)
}

func TestEqualIgnoresOrder(t *testing.T) {
	assert.True(t, Multi("a", "b").Equal(Multi("b", "a")))
	assert.False(t, Multi("a").Equal(Multi("a", "b")))
	assert.False(t, Multi("a", "c").Equal(Multi("a", "b")))
}
