package ml

import (
	"errors"
	"fmt"
)

// LabelEncoder assigns each fitted class its position in the class list.
type LabelEncoder struct {
	classes []string
	codes   map[string]int
}

func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("encoder has no classes")
	}
	codes := make(map[string]int, len(classes))
	for i, class := range classes {
		if _, dup := codes[class]; dup {
			return nil, fmt.Errorf("duplicate class %q", class)
		}
		codes[class] = i
	}
	return &LabelEncoder{classes: append([]string(nil), classes...), codes: codes}, nil
}

func (e *LabelEncoder) Transform(value string) (int, error) {
	code, ok := e.codes[value]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, value)
	}
	return code, nil
}

func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}
