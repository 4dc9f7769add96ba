package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack(t *testing.T) {
	s := NewStack[int](2)
	require.True(t, s.Empty())

	for i := 1; i <= 5; i++ {
		s.Push(i)
	}
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, s.Data())
	assert.Equal(t, 3, s.Index(2))

	assert.Equal(t, 5, s.Pop())
	assert.Equal(t, 1, s.PopFront())
	assert.Equal(t, []int{2, 3, 4}, s.Data())

	s.SetByIndex(0, 7)
	assert.Equal(t, 7, s.Index(0))

	s.Clear()
	assert.True(t, s.Empty())
}

func TestStackSet(t *testing.T) {
	s := NewStack[int](0)
	s.AddUnique(3)
	s.AddUnique(1)
	s.AddUnique(3)
	assert.Equal(t, []int{3, 1}, s.Data())
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))
}

func TestStackInsertRemove(t *testing.T) {
	s := NewStack[int](4)
	s.Push(1)
	s.Push(3)
	s.Insert(1, 2)
	s.Insert(0, 0)
	s.Insert(s.Len(), 4)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.Data())

	s.RemoveAt(0)
	s.RemoveAt(2)
	assert.Equal(t, []int{1, 2, 4}, s.Data())
	s.RemoveAt(s.Len() - 1)
	assert.Equal(t, []int{1, 2}, s.Data())
}
