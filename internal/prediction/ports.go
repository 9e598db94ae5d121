package prediction

import (
	"context"

	"cardiorisk/internal/data"
	"cardiorisk/internal/training"
)

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

// ModelStore persists the active model. Load must return an error wrapping
// store.ErrNotFound when nothing has been saved yet.
type ModelStore interface {
	Load(ctx context.Context) (*training.TrainedModel, error)
	Save(ctx context.Context, tm *training.TrainedModel) error
}

type ModelTrainer interface {
	Train(ctx context.Context, samples []data.LabeledSample) (*training.TrainedModel, error)
}
