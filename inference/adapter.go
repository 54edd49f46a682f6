package inference

import (
	"context"
	"fmt"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"studentperf/artifact"
	"studentperf/student"
)

// Result is one prediction, ready to render.
type Result struct {
	ClusterID    int                  `json:"cluster_id"`
	Label        string               `json:"label"`
	Known        bool                 `json:"known"`
	Tier         student.Tier         `json:"tier"`
	Presentation student.Presentation `json:"presentation"`
	Confidence   float64              `json:"confidence"`
	Raw          map[string]any       `json:"raw_input"`
	Encoded      EncodedRow           `json:"encoded"`
	Cached       bool                 `json:"cached"`
	Duration     time.Duration        `json:"duration_ns"`
}

// History receives every successful prediction.
type History interface {
	Save(ctx context.Context, requestID string, result Result) error
}

type Adapter struct {
	cache   *lru.Cache[string, Result]
	history History
	logger  *zap.Logger
}

type Option func(*Adapter)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

func WithHistory(history History) Option {
	return func(a *Adapter) { a.history = history }
}

// New creates an adapter caching up to cacheSize results; 0 disables the
// cache.
func New(cacheSize int, opts ...Option) (*Adapter, error) {
	a := &Adapter{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, Result](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		a.cache = cache
	}
	a.logger = a.logger.Named("inference")
	return a, nil
}

type requestIDKey struct{}

// WithRequestID tags ctx so history rows can be traced to a request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Predict encodes record against bundle, classifies it and resolves the
// label. One synchronous call; the bundle is only read.
func (a *Adapter) Predict(ctx context.Context, bundle *artifact.Bundle, record student.Record) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	row, err := Encode(bundle, record)
	if err != nil {
		PredictionErrors.WithLabelValues("encode").Inc()
		return Result{}, err
	}

	key := bundle.Checksum + "|" + row.key()
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			cached.Cached = true
			cached.Raw = record.Raw()
			cached.Duration = time.Since(start)
			a.observe(ctx, cached)
			return cached, nil
		}
	}

	cluster, confidence, err := bundle.Classifier.Predict(row.Values)
	if err != nil {
		PredictionErrors.WithLabelValues("predict").Inc()
		return Result{}, fmt.Errorf("classifier: %w", err)
	}

	result := Result{
		ClusterID:  cluster,
		Confidence: confidence,
		Raw:        record.Raw(),
		Encoded:    row,
	}
	if label, ok := bundle.Label(cluster); ok {
		result.Label = label
		result.Known = true
		result.Tier = student.TierForLabel(label)
	} else {
		result.Label = student.LabelUnknown
		result.Tier = student.TierUnknown
		UnknownClusters.Inc()
		a.logger.Warn("cluster id has no label",
			zap.Int("cluster", cluster),
			zap.String("artifact", bundle.Checksum))
	}
	result.Presentation = result.Tier.Presentation()
	result.Duration = time.Since(start)

	if a.cache != nil {
		a.cache.Add(key, result)
	}
	a.observe(ctx, result)
	return result, nil
}

func (a *Adapter) observe(ctx context.Context, result Result) {
	Predictions.WithLabelValues(result.Label, strconv.FormatBool(result.Cached)).Inc()
	PredictionLatency.Observe(result.Duration.Seconds())
	a.logger.Debug("prediction",
		zap.String("request_id", RequestID(ctx)),
		zap.Int("cluster", result.ClusterID),
		zap.String("label", result.Label),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("cached", result.Cached),
		zap.Duration("duration", result.Duration))

	if a.history == nil {
		return
	}
	if err := a.history.Save(ctx, RequestID(ctx), result); err != nil {
		PredictionErrors.WithLabelValues("history").Inc()
		a.logger.Warn("failed to save prediction", zap.Error(err))
	}
}
