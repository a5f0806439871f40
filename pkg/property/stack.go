package property

import "github.com/stratumcfg/stratum/pkg/errors"

// Stack is an ordered sequence of named layers. Later layers override
// earlier ones on key lookup (last-match-wins). Layer names are unique
// within a stack.
type Stack struct {
	layers []*Layer
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	return len(s.layers)
}

// Layers returns the layers in precedence order, lowest first.
func (s *Stack) Layers() []*Layer {
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Names returns the layer names, lowest precedence first.
func (s *Stack) Names() []string {
	names := make([]string, len(s.layers))
	for i, l := range s.layers {
		names[i] = l.name
	}
	return names
}

// Contains reports whether a layer with the given name exists.
func (s *Stack) Contains(name string) bool {
	return s.indexOf(name) >= 0
}

// Get returns the named layer.
func (s *Stack) Get(name string) (*Layer, bool) {
	if i := s.indexOf(name); i >= 0 {
		return s.layers[i], true
	}
	return nil, false
}

// AddLast appends a layer at the highest-precedence position.
func (s *Stack) AddLast(l *Layer) error {
	if err := s.checkName(l); err != nil {
		return err
	}
	s.layers = append(s.layers, l)
	return nil
}

// AddFirst inserts a layer at the lowest-precedence position.
func (s *Stack) AddFirst(l *Layer) error {
	if err := s.checkName(l); err != nil {
		return err
	}
	s.layers = append([]*Layer{l}, s.layers...)
	return nil
}

// AddAfter inserts a layer directly above the named layer.
func (s *Stack) AddAfter(name string, l *Layer) error {
	if err := s.checkName(l); err != nil {
		return err
	}
	i := s.indexOf(name)
	if i < 0 {
		return errors.Newf(errors.ErrorTypeNotFound, "layer %q not present in stack", name)
	}
	s.layers = append(s.layers, nil)
	copy(s.layers[i+2:], s.layers[i+1:])
	s.layers[i+1] = l
	return nil
}

// Remove deletes the named layer and returns it, or nil if absent.
func (s *Stack) Remove(name string) *Layer {
	i := s.indexOf(name)
	if i < 0 {
		return nil
	}
	l := s.layers[i]
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	return l
}

// Lookup returns the value for key from the highest-precedence layer that
// contains it.
func (s *Stack) Lookup(key string) (string, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if v, ok := s.layers[i].Get(key); ok {
			return v, true
		}
	}
	return "", false
}

// ContainsKey reports whether any layer contains the key.
func (s *Stack) ContainsKey(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

func (s *Stack) indexOf(name string) int {
	for i, l := range s.layers {
		if l.name == name {
			return i
		}
	}
	return -1
}

func (s *Stack) checkName(l *Layer) error {
	if s.Contains(l.name) {
		return errors.Newf(errors.ErrorTypeValidation, "layer %q already present in stack", l.name)
	}
	return nil
}
