package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"studentperf/artifact"
	"studentperf/ml"
	"studentperf/student"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Describe the model artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := artifact.Load(a.config.Artifact.Path, ml.LoadOptions{ONNXLibraryPath: a.config.Artifact.ONNXLibraryPath})
			if err != nil {
				return err
			}
			defer bundle.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "artifact:   %s (%s)\n", bundle.Path, humanize.Bytes(uint64(bundle.Size)))
			fmt.Fprintf(out, "sha256:     %s\n", bundle.Checksum)
			fmt.Fprintf(out, "classifier: %s\n", classifierName(bundle.Classifier))
			fmt.Fprintf(out, "features:   %s\n", strings.Join(bundle.FeatureNames, ", "))

			fmt.Fprintln(out, "\nencoders:")
			for _, f := range student.CategoricalFields {
				fmt.Fprintf(out, "  %-20s %s\n", f.Name, strings.Join(bundle.Classes(f.Name), " | "))
			}

			fmt.Fprintln(out, "\nclusters:")
			for _, c := range bundle.Labels() {
				fmt.Fprintf(out, "  %d  %s\n", c.ID, c.Label)
			}
			return nil
		},
	}
}

func classifierName(c ml.Classifier) string {
	switch m := c.(type) {
	case *ml.RandomForest:
		return fmt.Sprintf("random forest, %d trees", m.Size())
	case *ml.DecisionTree:
		return "decision tree"
	case *ml.ONNXClassifier:
		return "onnx"
	default:
		return fmt.Sprintf("%T", c)
	}
}
