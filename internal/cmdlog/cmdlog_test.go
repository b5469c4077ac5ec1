package cmdlog

import (
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"twitscan/internal/logging"
)

func counter(t *testing.T, name, cmd string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "command" && l.GetValue() == cmd {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRunCountsErrors(t *testing.T) {
	if err := logging.SetupWriter(io.Discard, "info", "json"); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	if err := Run("probe", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("error not passed through: %v", err)
	}
	if err := Run("probe", func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if got := counter(t, "twitscan_command_runs_total", "probe"); got != 2 {
		t.Fatalf("runs = %v", got)
	}
	if got := counter(t, "twitscan_command_errors_total", "probe"); got != 1 {
		t.Fatalf("errors = %v", got)
	}
}
