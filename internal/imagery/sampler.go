package imagery

import (
	"context"

	"github.com/carbovista/backend/internal/domain"
)

// Sampler executes a SampleRequest and returns the materialised pixels.
type Sampler interface {
	Sample(ctx context.Context, req SampleRequest) ([]domain.PixelSample, error)
}
