package ml

import (
	"errors"
	"fmt"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"
)

var onnxEnvMu sync.Mutex

// ONNXConfig describes a classifier exported to ONNX without a zipmap, so the
// probabilities come back as a plain [1, classes] tensor.
type ONNXConfig struct {
	Path              string
	InputName         string
	LabelOutput       string
	ProbOutput        string
	Classes           []int
	SharedLibraryPath string
}

// ONNXClassifier wraps an ONNX Runtime session for single-row inference.
type ONNXClassifier struct {
	session     *onnxruntime.DynamicAdvancedSession
	labelOutput string
	probOutput  string
	classes     []int
}

func LoadONNXClassifier(cfg ONNXConfig) (*ONNXClassifier, error) {
	if cfg.Path == "" {
		return nil, errors.New("onnx model path is required")
	}
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.LabelOutput == "" {
		cfg.LabelOutput = "label"
	}
	if err := initONNXEnvironment(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	outputs := []string{cfg.LabelOutput}
	if cfg.ProbOutput != "" {
		if len(cfg.Classes) == 0 {
			return nil, errors.New("onnx probability output requires classes")
		}
		outputs = append(outputs, cfg.ProbOutput)
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	session, err := onnxruntime.NewDynamicAdvancedSession(cfg.Path, []string{cfg.InputName}, outputs, options)
	if err != nil {
		return nil, fmt.Errorf("failed to load onnx model %s: %w", cfg.Path, err)
	}
	return &ONNXClassifier{
		session:     session,
		labelOutput: cfg.LabelOutput,
		probOutput:  cfg.ProbOutput,
		classes:     append([]int(nil), cfg.Classes...),
	}, nil
}

func (m *ONNXClassifier) Predict(features []float64) (int, float64, error) {
	if m.session == nil {
		return 0, 0, errors.New("onnx session is closed")
	}

	row := make([]float32, len(features))
	for i, v := range features {
		row[i] = float32(v)
	}
	input, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, int64(len(row))), row)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	label, err := onnxruntime.NewEmptyTensor[int64](onnxruntime.NewShape(1))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create label tensor: %w", err)
	}
	defer label.Destroy()
	outputs := []onnxruntime.Value{label}

	var probs *onnxruntime.Tensor[float32]
	if m.probOutput != "" {
		probs, err = onnxruntime.NewEmptyTensor[float32](onnxruntime.NewShape(1, int64(len(m.classes))))
		if err != nil {
			return 0, 0, fmt.Errorf("failed to create probability tensor: %w", err)
		}
		defer probs.Destroy()
		outputs = append(outputs, probs)
	}

	if err := m.session.Run([]onnxruntime.Value{input}, outputs); err != nil {
		return 0, 0, fmt.Errorf("inference failed: %w", err)
	}

	cluster := int(label.GetData()[0])
	confidence := 1.0
	if probs != nil {
		if idx := indexOf(m.classes, cluster); idx >= 0 {
			confidence = float64(probs.GetData()[idx])
		}
	}
	return cluster, confidence, nil
}

func (m *ONNXClassifier) Classes() []int {
	return append([]int(nil), m.classes...)
}

func (m *ONNXClassifier) Close() error {
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return err
}

func initONNXEnvironment(libraryPath string) error {
	onnxEnvMu.Lock()
	defer onnxEnvMu.Unlock()
	if onnxruntime.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		onnxruntime.SetSharedLibraryPath(libraryPath)
	}
	if err := onnxruntime.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize onnx runtime: %w", err)
	}
	return nil
}
