// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trailmark/internal/analytics"
	"github.com/tomtom215/trailmark/internal/config"
	"github.com/tomtom215/trailmark/internal/ingest"
	"github.com/tomtom215/trailmark/internal/logging"
)

// Report kinds.
const (
	kindDaily  = "daily"
	kindWeekly = "weekly"
	kindFunnel = "funnel"
	kindCohort = "cohort"
)

type reportOptions struct {
	input     string
	kind      string
	format    analytics.Format
	steps     []string
	timeframe analytics.Timeframe
	output    string
}

func newReportFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.String("input", "", "Events file, NDJSON or a JSON array (required)")
	fs.String("kind", kindDaily, "Report kind: daily, weekly, funnel or cohort")
	fs.String("format", string(analytics.FormatJSON), "Output format: json or csv (daily and weekly only)")
	fs.String("steps", "", "Comma-separated funnel steps, matched against interaction elements")
	fs.String("timeframe", string(analytics.TimeframeWeekly), "Cohort timeframe: daily, weekly or monthly")
	fs.String("output", "", "Output file (default: stdout)")
	return fs
}

// parseReportFlags parses and checks report flags. Problems are wrapped in
// errUsage; -h yields flag.ErrHelp.
func parseReportFlags(args []string) (reportOptions, error) {
	fs := newReportFlags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return reportOptions{}, err
		}
		return reportOptions{}, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return reportOptions{}, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	get := func(name string) string { return fs.Lookup(name).Value.String() }
	opts := reportOptions{
		input:  get("input"),
		kind:   strings.ToLower(get("kind")),
		output: get("output"),
	}

	if opts.input == "" {
		return reportOptions{}, fmt.Errorf("%w: -input is required", errUsage)
	}

	format, err := analytics.ParseFormat(get("format"))
	if err != nil {
		return reportOptions{}, fmt.Errorf("%w: %w", errUsage, err)
	}
	opts.format = format

	switch opts.kind {
	case kindDaily, kindWeekly:
	case kindFunnel, kindCohort:
		if format != analytics.FormatJSON {
			return reportOptions{}, fmt.Errorf("%w: %w: %s reports are json only", errUsage, analytics.ErrUnsupportedFormat, opts.kind)
		}
	default:
		return reportOptions{}, fmt.Errorf("%w: unknown report kind %q", errUsage, opts.kind)
	}

	if opts.kind == kindFunnel {
		opts.steps = splitSteps(get("steps"))
		if len(opts.steps) == 0 {
			return reportOptions{}, fmt.Errorf("%w: funnel reports need -steps", errUsage)
		}
	}

	tf, err := analytics.ParseTimeframe(get("timeframe"))
	if err != nil {
		return reportOptions{}, fmt.Errorf("%w: %w", errUsage, err)
	}
	opts.timeframe = tf

	return opts, nil
}

func splitSteps(s string) []string {
	var steps []string
	for _, step := range strings.Split(s, ",") {
		if step = strings.TrimSpace(step); step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

func runReport(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	opts, err := parseReportFlags(args)
	if err != nil {
		return err
	}

	acfg, err := cfg.AnalyticsSettings()
	if err != nil {
		return err
	}
	svc, err := analytics.New(acfg)
	if err != nil {
		return err
	}

	ctx = logging.ContextWithNewRunID(ctx)
	logging.CtxInfo(ctx).
		Str("input", opts.input).
		Str("kind", opts.kind).
		Str("format", string(opts.format)).
		Msg("Report started")

	batch, err := ingest.ReadFile(ctx, opts.input)
	if err != nil {
		return fmt.Errorf("read events: %w", err)
	}

	out, err := renderReport(ctx, svc, batch, opts)
	if err != nil {
		return err
	}

	if err := writeOutput(opts.output, out, stdout); err != nil {
		return err
	}

	logging.CtxInfo(ctx).
		Int("records", batch.Stats.Records).
		Int("rejected", len(batch.Stats.Rejected)).
		Str("output", outputName(opts.output)).
		Msg("Report written")
	return nil
}

// renderReport computes the requested report and encodes it.
func renderReport(ctx context.Context, svc *analytics.Service, batch *ingest.Batch, opts reportOptions) (string, error) {
	switch opts.kind {
	case kindDaily:
		return analytics.ExportAggregatedData(opts.format, svc.ProcessDailyStats(ctx, batch.PageViews))

	case kindWeekly:
		daily := svc.ProcessDailyStats(ctx, batch.PageViews)
		return analytics.ExportAggregatedData(opts.format, svc.ProcessWeeklyStats(ctx, daily))

	case kindFunnel:
		return marshalList(svc.CalculateFunnel(ctx, batch.Interactions, opts.steps))

	case kindCohort:
		cohorts, err := svc.CalculateCohortAnalysis(ctx, batch.PageViews, opts.timeframe)
		if err != nil {
			return "", err
		}
		return marshalList(cohorts)
	}
	return "", fmt.Errorf("%w: unknown report kind %q", errUsage, opts.kind)
}

// marshalList encodes items the same way ExportAggregatedData encodes json,
// including "[]" for an empty list.
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(b), nil
}

func writeOutput(path, out string, stdout io.Writer) error {
	if out != "" {
		out += "\n"
	}
	if path == "" {
		_, err := io.WriteString(stdout, out)
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil { //nolint:gosec // reports are not secret
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
