package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studentperf/artifact"
	"studentperf/inference"
	"studentperf/ml"
	"studentperf/student"
)

func newPredictCmd(a *app) *cobra.Command {
	values := make(map[string]*string)
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one prediction from flags",
		Long: `Run one prediction without the web form. Unset fields take the form's
defaults: the first option of every dropdown and 3.00 for grade points.`,
		Example: `  studentperf predict --ras_etnis "group C" --ip_matematika 3.75`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := artifact.Load(a.config.Artifact.Path, ml.LoadOptions{ONNXLibraryPath: a.config.Artifact.ONNXLibraryPath})
			if err != nil {
				return err
			}
			defer bundle.Close()

			record := student.DefaultRecord(bundle.Classes)
			for _, name := range student.Columns() {
				if !cmd.Flags().Changed(name) {
					continue
				}
				if err := record.Set(name, *values[name]); err != nil {
					return err
				}
			}
			if err := record.Validate(); err != nil {
				return err
			}

			adapter, err := inference.New(0, inference.WithLogger(a.logger))
			if err != nil {
				return err
			}
			result, err := adapter.Predict(cmd.Context(), bundle, record)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}
			fmt.Fprintf(out, "Klaster: %s %s\n", result.Label, result.Presentation.Icon)
			fmt.Fprintln(out, result.Presentation.Message)
			fmt.Fprintf(out, "cluster id %d, keyakinan %.0f%%\n\n", result.ClusterID, result.Confidence*100)
			fmt.Fprintln(out, strings.Join(result.Encoded.Names, "\t"))
			fmt.Fprintln(out, strings.Join(result.Encoded.Cells(), "\t"))
			return nil
		},
	}

	for _, f := range student.CategoricalFields {
		values[f.Name] = cmd.Flags().String(f.Name, "", f.Label)
	}
	for _, f := range student.GradeFields {
		values[f.Name] = cmd.Flags().String(f.Name, student.DefaultGrade.StringFixed(2), f.Label+" (0.00 - 4.00)")
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}
