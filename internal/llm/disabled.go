package llm

import (
	"context"
	"errors"
)

var ErrGeneratorDisabled = errors.New("text generation is not configured")

// DisabledGenerator is used when no provider credentials are configured.
type DisabledGenerator struct{}

func (DisabledGenerator) Generate(context.Context, string, string) (string, error) {
	return "", ErrGeneratorDisabled
}
