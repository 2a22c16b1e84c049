package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/apiserver"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/cnf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/eval"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/stats"
)

const (
	errColor = color.FgHiRed
)

var (
	titleColor  = color.New(color.FgHiMagenta).SprintFunc()
	greenColor  = color.New(color.FgGreen).SprintFunc()
	yellowColor = color.New(color.FgYellow).SprintFunc()
	redColor    = color.New(color.FgRed).SprintFunc()
)

func scoreColor(r2 float64) string {
	v := fmt.Sprintf("%.4f", r2)
	switch {
	case r2 >= 0.5:
		return greenColor(v)
	case r2 >= 0:
		return yellowColor(v)
	default:
		return redColor(v)
	}
}

func overfitColor(status eval.OverfitStatus) string {
	switch status {
	case eval.OverfitNone:
		return greenColor(string(status))
	case eval.OverfitSlight:
		return yellowColor(string(status))
	default:
		return redColor(string(status))
	}
}

func runActionServer(conf *cnf.Conf, ver VersionInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	apiserver.Run(ctx, conf, ver.Version)
}

func runActionListRuns(conf *cnf.Conf, kind string, limit int) {
	if conf.WorkingDBPath == "" {
		color.New(errColor).Fprintln(os.Stderr, "workingDBPath not configured, there are no recorded runs")
		os.Exit(exitErrorFailedToOpenRunLog)
	}
	db, err := stats.NewDatabase(conf.WorkingDBPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToOpenRunLog)
	}
	defer db.Close()
	if err := db.Init(); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToOpenRunLog)
	}
	filter := stats.ListFilter{}.SetLimit(limit)
	if kind != "" {
		filter = filter.SetKind(kind)
	}
	runs, err := db.ListRuns(filter)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFailedToOpenRunLog)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tKIND\tSPLIT\tTRAIN R²\tTEST R²\tTEST RMSE\tTEST N")
	for _, run := range runs {
		fmt.Fprintf(
			tw,
			"%s\t%s\t%s\t%d\t%.4f\t%.4f\t%.4f\t%d\n",
			run.ID, run.Time().Format(time.DateTime), run.Kind, run.SplitYear,
			run.Train.R2, run.Test.R2, run.Test.RMSE, run.Test.NumSamples,
		)
	}
	tw.Flush()
}
