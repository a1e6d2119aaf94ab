package app

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// RunMode selects what the server binary does on start.
type RunMode string

const (
	// RunServe starts the HTTP server.
	RunServe RunMode = "serve"
	// RunCheck loads configuration, pings Postgres and exits.
	RunCheck RunMode = "check"
	// RunSkip exits immediately; used when the binary is built under test harnesses.
	RunSkip RunMode = "skip"
)

type runtimeEnv struct {
	Mode     string `envconfig:"KPI_RUN_MODE" default:"serve"`
	TestMode bool   `envconfig:"KPI_TEST_MODE"`
}

// ResolveRunMode reads KPI_RUN_MODE. KPI_TEST_MODE forces RunSkip.
func ResolveRunMode() (RunMode, error) {
	var env runtimeEnv
	if err := envconfig.Process("", &env); err != nil {
		return "", err
	}
	if env.TestMode {
		return RunSkip, nil
	}
	switch mode := RunMode(env.Mode); mode {
	case "":
		return RunServe, nil
	case RunServe, RunCheck, RunSkip:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown run mode %q", env.Mode)
	}
}
