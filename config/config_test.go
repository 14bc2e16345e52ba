package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWithDefaults(t *testing.T) {
	c := WithDefaults(Configuration{})
	if c.ApiPort != "8080" || c.Database != "sqlite3" {
		t.Fatalf("server defaults not applied: %+v", c)
	}
	if c.Pipeline.WeeklyTimeoutSeconds != 15 {
		t.Fatalf("weekly timeout = %d, want 15", c.Pipeline.WeeklyTimeoutSeconds)
	}
	if c.Pipeline.WeeklyMinReflections != 3 || c.Pipeline.WeeklyMaxReflections != 7 {
		t.Fatalf("weekly sample bounds = %d/%d, want 3/7", c.Pipeline.WeeklyMinReflections, c.Pipeline.WeeklyMaxReflections)
	}
	if c.Pipeline.SweepIntervalSeconds != 0 {
		t.Fatalf("sweeper must stay disabled by default, got %d", c.Pipeline.SweepIntervalSeconds)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	in := Configuration{ApiPort: "9000"}
	in.Pipeline.WeeklyTimeoutSeconds = 5
	c := WithDefaults(in)
	if c.ApiPort != "9000" || c.Pipeline.WeeklyTimeoutSeconds != 5 {
		t.Fatalf("explicit values overwritten: %+v", c)
	}
}

func TestGetReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"api_port":"9090","pipeline":{"weekly_min_reflections":4}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c := Get(path)
	if c.ApiPort != "9090" {
		t.Fatalf("api_port = %s, want 9090", c.ApiPort)
	}
	if c.Pipeline.WeeklyMinReflections != 4 {
		t.Fatalf("weekly_min_reflections = %d, want 4", c.Pipeline.WeeklyMinReflections)
	}
	if c.Pipeline.WeeklyMaxReflections != 7 {
		t.Fatalf("defaults must still fill unset fields, got %d", c.Pipeline.WeeklyMaxReflections)
	}
}
