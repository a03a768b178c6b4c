package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func loadConfig(t *testing.T, text string) config {
	t.Helper()

	r, err := resolve(context.Background())(strings.NewReader(text))
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	c, ok := r.(config)
	if !ok {
		t.Fatalf("resolve() = %T, want config", r)
	}

	return c
}

func TestResolve_Flatten(t *testing.T) {
	c := loadConfig(t, `
log-level: debug
log:
  format: json
  pretty: false
pprof_mode: cpu
path: [/a, /b]
count: 3
ratio: 0.5
empty:
`)

	want := config{
		"log-level":  "debug",
		"log-format": "json",
		"log-pretty": false,
		"pprof_mode": "cpu",
		"path":       "/a,/b",
		"count":      "3",
		"ratio":      "0.5",
	}

	if len(c) != len(want) {
		t.Errorf("got %d keys %v, want %d", len(c), c, len(want))
	}

	for key, value := range want {
		if c[key] != value {
			t.Errorf("c[%q] = %#v, want %#v", key, c[key], value)
		}
	}
}

func TestResolve_Empty(t *testing.T) {
	if c := loadConfig(t, "  \n"); len(c) != 0 {
		t.Errorf("got %v, want empty config", c)
	}
}

func TestResolve_Invalid(t *testing.T) {
	_, err := resolve(context.Background())(strings.NewReader("- a\n- b\n"))
	if err == nil {
		t.Error("resolve() of a sequence succeeded")
	}
}

func TestConfig_Resolve(t *testing.T) {
	c := config{"log-level": "debug", "pprof_mode": "cpu"}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"pprof-mode", "cpu"},
		{"log-format", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := &kong.Flag{Value: &kong.Value{Name: tt.flag}}

			got, err := c.Resolve(nil, nil, flag)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Resolve() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestResolve_Kong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	data := `
name: file
count: 3
tags: [a, b]
verbose: true
nested:
  flag: deep
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli struct {
		Name       string
		Count      int
		Tags       []string
		Verbose    bool
		NestedFlag string
	}

	parser, err := kong.New(&cli,
		kong.Configuration(resolve(context.Background()), path),
	)
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}

	if _, err := parser.Parse([]string{"--name=arg"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cli.Name != "arg" {
		t.Errorf("Name = %q, want command-line value %q", cli.Name, "arg")
	}

	if cli.Count != 3 {
		t.Errorf("Count = %d, want 3", cli.Count)
	}

	if !slices.Equal(cli.Tags, []string{"a", "b"}) {
		t.Errorf("Tags = %v, want [a b]", cli.Tags)
	}

	if !cli.Verbose {
		t.Error("Verbose = false, want true")
	}

	if cli.NestedFlag != "deep" {
		t.Errorf("NestedFlag = %q, want %q", cli.NestedFlag, "deep")
	}
}

func TestScalar(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "s", "s"},
		{"int", 7, "7"},
		{"negative", int64(-2), "-2"},
		{"unsigned", uint64(9), "9"},
		{"float", 1.25, "1.25"},
		{"sequence", []any{"x", 1, nil}, "x,1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scalar(tt.in); got != tt.want {
				t.Errorf("scalar(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
