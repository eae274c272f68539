package feature

import (
	"errors"
	"fmt"
)

var ErrDuplicateFeature = errors.New("duplicate feature name")

// Labels maps each design matrix column name to its position, which is also the position of
// its fitted coefficient.
type Labels struct {
	pos   map[string]int
	names []string
}

// NewLabels indexes names in order. A name appearing twice would make coefficient lookups
// ambiguous and is rejected.
func NewLabels(names []string) (*Labels, error) {
	l := &Labels{
		pos:   make(map[string]int, len(names)),
		names: append([]string(nil), names...),
	}
	for i, name := range names {
		if prev, exists := l.pos[name]; exists {
			return nil, fmt.Errorf("%s at columns %d and %d, %w", name, prev, i, ErrDuplicateFeature)
		}
		l.pos[name] = i
	}
	return l, nil
}

func (l *Labels) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Names returns a copy of the ordered names
func (l *Labels) Names() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.names...)
}

// Index returns the column of name, or -1 and false when it is absent.
func (l *Labels) Index(name string) (int, bool) {
	if l == nil {
		return -1, false
	}
	i, ok := l.pos[name]
	if !ok {
		return -1, false
	}
	return i, true
}
