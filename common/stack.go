package common

// Stack is a growable array used as stack, queue and small set by the
// region and contour passes.
type Stack[T comparable] struct {
	data []T
}

func NewStack[T comparable](capacity int) *Stack[T] {
	return &Stack[T]{data: make([]T, 0, capacity)}
}

func (s *Stack[T]) Data() []T { return s.data }

func (s *Stack[T]) Len() int { return len(s.data) }

func (s *Stack[T]) Empty() bool { return len(s.data) == 0 }

func (s *Stack[T]) Clear() { s.data = s.data[:0] }

func (s *Stack[T]) Push(v T) { s.data = append(s.data, v) }

func (s *Stack[T]) Pop() T {
	e := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return e
}

// PopFront removes and returns the first element.
func (s *Stack[T]) PopFront() T {
	e := s.data[0]
	copy(s.data, s.data[1:])
	s.data = s.data[:len(s.data)-1]
	return e
}

func (s *Stack[T]) Index(i int) T { return s.data[i] }

func (s *Stack[T]) SetByIndex(i int, v T) { s.data[i] = v }

func (s *Stack[T]) Contains(v T) bool {
	for _, e := range s.data {
		if e == v {
			return true
		}
	}
	return false
}

// AddUnique appends v unless it is already present.
func (s *Stack[T]) AddUnique(v T) {
	if !s.Contains(v) {
		s.data = append(s.data, v)
	}
}

// Insert places v at index i, shifting the tail right.
func (s *Stack[T]) Insert(i int, v T) {
	var zero T
	s.data = append(s.data, zero)
	copy(s.data[i+1:], s.data[i:])
	s.data[i] = v
}

// RemoveAt deletes the element at index i, keeping order.
func (s *Stack[T]) RemoveAt(i int) {
	copy(s.data[i:], s.data[i+1:])
	s.data = s.data[:len(s.data)-1]
}
