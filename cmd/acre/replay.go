// Copyright (c) 2025 The Acreage developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/acreage-labs/acreage/scenario"
)

func replayAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	if ctx.NArg() == 0 {
		return errors.New("no scenario file given")
	}
	expectPath := ctx.String(expectFlag.Name)
	if expectPath != "" && ctx.NArg() > 1 {
		return fmt.Errorf("--%s takes a single scenario", expectFlag.Name)
	}

	failed := 0
	for _, path := range ctx.Args() {
		report, err := replay(path)
		if err != nil {
			return errors.WithMessage(err, path)
		}
		trace := report.Trace()
		if ctx.Bool(traceFlag.Name) {
			fmt.Print(trace)
		}

		if !report.Passed() {
			failed++
			fmt.Printf("FAIL %s\n", report.Name)
			for _, f := range report.Failures {
				fmt.Printf("    %s\n", f)
			}
			continue
		}

		if expectPath != "" {
			expected, err := os.ReadFile(expectPath)
			if err != nil {
				return errors.Wrap(err, "read expected trace")
			}
			if diff := traceDiff(string(expected), trace); diff != "" {
				failed++
				fmt.Printf("FAIL %s: trace mismatch\n%s", report.Name, diff)
				continue
			}
		}
		fmt.Printf("ok   %s (%d calls)\n", report.Name, len(report.Results))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, ctx.NArg())
	}
	return nil
}

func replay(path string) (*scenario.Report, error) {
	s, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}

	bar := pb.New(len(s.Steps)).
		SetMaxWidth(90).
		Prefix(s.Name + " ")
	bar.Output = os.Stderr
	bar.Start()
	defer func() { bar.NotPrint = true }()

	report, err := scenario.RunProgress(s, func(int) { bar.Increment() })
	if err != nil {
		return nil, err
	}
	bar.Finish()
	return report, nil
}

// traceDiff returns a unified diff between the expected and actual traces,
// or an empty string if they are equal.
func traceDiff(expected, actual string) string {
	if strings.TrimSpace(expected) == strings.TrimSpace(actual) {
		return ""
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	return diff
}
