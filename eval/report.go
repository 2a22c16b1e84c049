// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package eval

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const reportSeparatorWidth = 60

func fmtScore(v float64) string {
	return fmt.Sprintf("%01.4f", v)
}

func fmtPercent(v float64) string {
	return fmt.Sprintf("%01.2f%%", v)
}

type reportRow struct {
	label    string
	random   string
	temporal string
}

func (c Comparison) tableRows() []reportRow {
	return []reportRow{
		{"Train R²", fmtScore(c.Random.Train.R2), fmtScore(c.Temporal.Train.R2)},
		{"Test R²", fmtScore(c.Random.Test.R2), fmtScore(c.Temporal.Test.R2)},
		{"Train RMSE", fmtScore(c.Random.Train.RMSE), fmtScore(c.Temporal.Train.RMSE)},
		{"Test RMSE", fmtScore(c.Random.Test.RMSE), fmtScore(c.Temporal.Test.RMSE)},
		{"Train MAE", fmtScore(c.Random.Train.MAE), fmtScore(c.Temporal.Train.MAE)},
		{"Test MAE", fmtScore(c.Random.Test.MAE), fmtScore(c.Temporal.Test.MAE)},
		{"Train MAPE", fmtPercent(c.Random.Train.MAPE), fmtPercent(c.Temporal.Train.MAPE)},
		{"Test MAPE", fmtPercent(c.Random.Test.MAPE), fmtPercent(c.Temporal.Test.MAPE)},
		{"Train samples", fmt.Sprint(c.Random.Train.NumSamples), fmt.Sprint(c.Temporal.Train.NumSamples)},
		{"Test samples", fmt.Sprint(c.Random.Test.NumSamples), fmt.Sprint(c.Temporal.Test.NumSamples)},
		{"Overfit gap", fmtScore(c.Random.OverfitGap()), fmtScore(c.Temporal.OverfitGap())},
		{"Overfit status", string(c.Random.OverfitStatus()), string(c.Temporal.OverfitStatus())},
	}
}

// WriteTable writes the metrics comparison table
func (c Comparison) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "Metric\t%s\t%s\n", "80/20 Split", "Temporal Split")
	for _, row := range c.tableRows() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.label, row.random, row.temporal)
	}
	return tw.Flush()
}

func writeSplitSummary(b *strings.Builder, se SplitEvaluation) {
	fmt.Fprintf(b, "%s:\n", se.Name)
	fmt.Fprintf(b, "  Train years: %s\n", se.TrainYears)
	fmt.Fprintf(b, "  Test years: %s\n", se.TestYears)
	fmt.Fprintf(b, "  Test R²: %s\n", fmtScore(se.Test.R2))
	fmt.Fprintf(b, "  Test RMSE: %s\n", fmtScore(se.Test.RMSE))
	fmt.Fprintf(b, "  Test MAE: %s\n", fmtScore(se.Test.MAE))
	fmt.Fprintf(b, "  Train R² - Test R²: %s (%s)\n\n", fmtScore(se.OverfitGap()), se.OverfitStatus())
}

// WriteReport writes a plain text report comparing
// the random and the temporal split evaluation
func (c Comparison) WriteReport(w io.Writer) error {
	separator := strings.Repeat("=", reportSeparatorWidth)
	if _, err := fmt.Fprintf(w, "GDP PREDICTION MODEL - 80/20 SPLIT EVALUATION\n%s\n\n", separator); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if _, err := fmt.Fprintf(
		w, "Samples: %d (dropped: %d), years: %s\n\n", c.NumSamples, c.NumDropped, c.Years); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := c.WriteTable(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nKEY INSIGHTS\n%s\n\n", separator, separator)
	writeSplitSummary(&b, c.Random)
	writeSplitSummary(&b, c.Temporal)
	if c.RandomOverstates() {
		fmt.Fprintf(
			&b,
			"The random split shows %s higher test R² than the temporal split.\n"+
				"Its test set is mixed with the training years so it overstates "+
				"the forecasting skill. Use the temporal split to judge the model.\n",
			fmtScore(c.R2Difference()),
		)

	} else {
		b.WriteString("The random split does not overstate the forecasting skill.\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
