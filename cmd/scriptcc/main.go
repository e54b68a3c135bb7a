package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"scriptcc/internal/cache"
	"scriptcc/internal/driver"
	"scriptcc/internal/errors"
	"scriptcc/internal/toolchain"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	env := driver.ReadEnv()
	commonlog.Configure(env.Debug, nil)

	reporter := errors.NewReporter(os.Stderr)

	req, info, err := driver.ParseArgs(argv)
	if err != nil {
		reporter.Report(err)
		return 1
	}
	if info != "" {
		fmt.Print(info)
		return 0
	}

	startTime := time.Now()

	store, err := buildCache(env)
	if err != nil {
		reporter.Report(err)
		return 1
	}

	pipeline := driver.New(externalToolchain(env), store, reporter)
	if err := pipeline.Run(context.Background(), req, env); err != nil {
		reporter.Report(err)
		color.Red("Build failed after %s", formatDuration(time.Since(startTime)))
		return 1
	}

	label := req.Target.Path
	if label == "" {
		label = "objects"
	}
	color.Green("Successfully built %s in %s", label, formatDuration(time.Since(startTime)))
	return 0
}

func buildCache(env driver.Env) (*cache.Cache, error) {
	if env.CacheRoot != "" {
		return cache.NewPersistent(env.CacheRoot)
	}
	return cache.New(), nil
}

func externalToolchain(env driver.Env) *toolchain.External {
	tc := toolchain.NewExternal()
	if env.CC != "" {
		tc.CC = env.CC
	}
	if env.CFlags != "" {
		tc.ExtraFlags = strings.Fields(env.CFlags)
	}
	tc.ForceCXX = env.ForceCXX
	return tc
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
