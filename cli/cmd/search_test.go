package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/holtzman/pkg"
)

func TestFindTemplate(t *testing.T) {
	flagDir := t.TempDir()
	envDir := t.TempDir()

	writeFile(t, flagDir, "shared.tmpl", "flag")
	writeFile(t, envDir, "shared.tmpl", "env")
	writeFile(t, envDir, "env.tmpl", "env")

	direct := writeFile(t, t.TempDir(), "direct.tmpl", "direct")

	t.Setenv(pkg.EnvVar("path"), envDir+string(os.PathListSeparator)+filepath.Join(envDir, "missing"))

	ctx := WithSearchPath(context.Background(), flagDir)

	tests := []struct {
		name string
		want string
	}{
		{"direct", direct},
		{"shared.tmpl", filepath.Join(flagDir, "shared.tmpl")},
		{"env.tmpl", filepath.Join(envDir, "env.tmpl")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := tt.name
			if name == "direct" {
				name = direct
			}

			got, err := findTemplate(ctx, name)
			if err != nil {
				t.Fatalf("findTemplate(%q) error = %v", name, err)
			}

			if got != tt.want {
				t.Errorf("findTemplate(%q) = %q, want %q", name, got, tt.want)
			}
		})
	}

	for _, name := range []string{"none.tmpl", filepath.Join(flagDir, "none.tmpl")} {
		if _, err := findTemplate(ctx, name); !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("findTemplate(%q) error = %v, want %v", name, err, ErrTemplateNotFound)
		}
	}
}

func TestSearchPath_OmitsMissing(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")

	t.Setenv(pkg.EnvVar("path"), "")

	got := searchPath(WithSearchPath(context.Background(), missing, dir))
	if len(got) != 1 || got[0] != dir {
		t.Errorf("searchPath() = %v, want [%s]", got, dir)
	}
}
