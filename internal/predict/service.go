package predict

import (
	"context"
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kartoza/heart-risk/internal/features"
	"github.com/kartoza/heart-risk/internal/model"
	"github.com/kartoza/heart-risk/internal/models"
	"go.uber.org/zap"
)

// ErrModelNotLoaded is returned by every prediction when the service was
// built without a model
var ErrModelNotLoaded = errors.New("model not loaded")

// ErrInvalidProbability is returned when the model scores outside [0, 1]
var ErrInvalidProbability = errors.New("model returned an invalid probability")

// Result is the outcome of one prediction
type Result struct {
	Probability float64
	Prediction  int
	RiskLevel   string
}

// Response converts the result to its wire form
func (r Result) Response() models.PredictionResponse {
	return models.PredictionResponse{
		Probability: FormatProbability(r.Probability),
		RiskLevel:   r.RiskLevel,
		Prediction:  r.Prediction,
	}
}

// Service scores patients against a single immutable model
type Service struct {
	clf    model.Classifier
	cache  *lru.Cache[features.Vector, Result]
	logger *zap.Logger
}

// NewService creates a prediction service. clf may be nil when the model
// failed to load, in which case every prediction fails with
// ErrModelNotLoaded. A cacheSize of zero disables result caching.
func NewService(clf model.Classifier, cacheSize int, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		clf:    clf,
		logger: logger,
	}

	if cacheSize > 0 {
		cache, err := lru.New[features.Vector, Result](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create prediction cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// Ready reports whether a model is loaded
func (s *Service) Ready() bool {
	return s.clf != nil
}

// Kind returns the loaded model's kind, or "" when unknown
func (s *Service) Kind() string {
	if k, ok := s.clf.(interface{ Kind() string }); ok {
		return k.Kind()
	}
	return ""
}

// CacheEnabled reports whether results are cached
func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

// Predict scores an encoded feature vector
func (s *Service) Predict(ctx context.Context, x features.Vector) (Result, error) {
	if !s.Ready() {
		return Result{}, ErrModelNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if s.cache != nil {
		if r, ok := s.cache.Get(x); ok {
			s.logger.Debug("prediction cache hit")
			return r, nil
		}
	}

	p, err := s.clf.PredictProba(x)
	if err != nil {
		return Result{}, fmt.Errorf("model probability failed: %w", err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	class, err := s.clf.Predict(x)
	if err != nil {
		return Result{}, fmt.Errorf("model prediction failed: %w", err)
	}

	r := Result{
		Probability: p,
		Prediction:  class,
		RiskLevel:   RiskLevel(p),
	}
	if s.cache != nil {
		s.cache.Add(x, r)
	}
	return r, nil
}

// PredictPayload validates, encodes and scores a loosely typed request.
// The model check happens before any validation.
func (s *Service) PredictPayload(ctx context.Context, payload map[string]any) (Result, error) {
	if !s.Ready() {
		return Result{}, ErrModelNotLoaded
	}

	x, err := features.Build(payload)
	if err != nil {
		return Result{}, err
	}

	s.logger.Debug("encoded features", zap.Float64s("vector", x.Slice()))
	return s.Predict(ctx, x)
}
