package ports

import (
	"context"
	"io"

	"go.trai.ch/warm/internal/core/domain"
)

// Executor runs pipeline steps.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the step's command in dir, streaming its output to stdout
	// and stderr. It returns domain.ErrStepFailed (with exit code metadata)
	// when the command exits non-zero.
	Execute(ctx context.Context, step *domain.Step, dir string, stdout, stderr io.Writer) error
}
