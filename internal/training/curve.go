package training

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cardiorisk/internal/data"
	"cardiorisk/internal/evaluation"
	"cardiorisk/internal/features"
	"cardiorisk/internal/models"
)

// LearningCurve refits the configured algorithm on growing prefixes of the
// training split and scores each fit on both sides. The holdout is the same
// one Train would use for these samples.
func (t *Trainer) LearningCurve(ctx context.Context, samples []data.LabeledSample, points, minSize int) ([]evaluation.CurvePoint, error) {
	if len(samples) < 2 {
		return nil, &TrainingError{Reason: fmt.Sprintf("need at least 2 samples, got %d", len(samples))}
	}
	X, y := features.Matrix(samples)
	trainIdx, testIdx := evaluation.TrainTestSplit(len(X), t.opts.TestFraction, t.opts.Seed)
	Xtrain, ytrain := gather(X, y, trainIdx)
	Xtest, ytest := gather(X, y, testIdx)

	sizes := evaluation.CurveSizes(len(Xtrain), points, minSize, true)
	out := make([]evaluation.CurvePoint, 0, len(sizes))
	for _, s := range sizes {
		subX, subY := Xtrain[:s], ytrain[:s]
		mdl, err := models.New(t.opts.Algorithm, t.opts.Params)
		if err != nil {
			return nil, &TrainingError{Reason: "build model", Err: err}
		}
		if err := mdl.Fit(ctx, subX, subY); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("curve point %d: %w", s, err)
			}
			return nil, &TrainingError{Reason: fmt.Sprintf("fit curve point %d", s), Err: err}
		}
		pTrain := mdl.PredictProba(subX)
		pTest := mdl.PredictProba(Xtest)
		pt := evaluation.CurvePoint{
			Size:     s,
			TrainAcc: evaluation.Accuracy(subY, mdl.Predict(subX)),
			TestAcc:  evaluation.Accuracy(ytest, mdl.Predict(Xtest)),
			TrainROC: evaluation.ROCAUC(subY, pTrain),
			TestROC:  evaluation.ROCAUC(ytest, pTest),
		}
		_, _, pt.TrainF1 = evaluation.PRF1(subY, pTrain, 0.5)
		_, _, pt.TestF1 = evaluation.PRF1(ytest, pTest, 0.5)
		out = append(out, pt)
		t.logger.Info("Curve point",
			zap.Int("size", s),
			zap.Float64("train_acc", pt.TrainAcc),
			zap.Float64("test_acc", pt.TestAcc),
		)
	}
	return out, nil
}
