package pdf

import (
	"context"
	"io"

	plandomain "github.com/sunterra/sunplan/internal/plan/domain"
)

type Provider interface {
	GenerateProposal(ctx context.Context, snapshot *plandomain.Snapshot) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateProposal(ctx context.Context, snapshot *plandomain.Snapshot) (io.Reader, error) {
	return nil, nil
}
