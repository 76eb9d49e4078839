package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/user/accuracy_plotter_go/internal/config"
	"github.com/user/accuracy_plotter_go/internal/report"
	"github.com/user/accuracy_plotter_go/internal/runner"
)

// App ties the resolved configuration to the plotter and the console.
type App struct {
	cfg config.Config
	out io.Writer
	log *logrus.Logger
}

// NewApp creates an App writing user-facing output to out.
func NewApp(cfg config.Config, out io.Writer) *App {
	return &App{cfg: cfg, out: out, log: logrus.StandardLogger()}
}

func (a *App) sendStatus(format string, args ...interface{}) {
	a.log.Info(fmt.Sprintf(format, args...))
}

// Run plots every configured dataset and reports the outcome.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.ConfigPath != "" {
		a.sendStatus("Using config %s", a.cfg.ConfigPath)
	}
	a.sendStatus("Plotting %d datasets x %d methods from %s", len(a.cfg.Datasets), len(a.cfg.Methods), a.cfg.InputDir)

	summary, err := runner.NewResultPlotter(a.cfg, a.log).Run(ctx)

	if a.cfg.Summary {
		if analyses := summary.Analyses(); len(analyses) > 0 {
			report.WriteSummaryTable(a.out, analyses)
		}
	}
	if summary.ReportPath != "" {
		a.sendStatus("PDF report: %s", summary.ReportPath)
	}

	plotted := len(summary.Outcomes) - summary.Failed()
	if err != nil {
		color.New(color.FgYellow).Fprintf(a.out, "%d of %d datasets plotted, %d failed\n", plotted, len(a.cfg.Datasets), summary.Failed())
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "%d of %d datasets plotted\n", plotted, len(a.cfg.Datasets))
	return nil
}
