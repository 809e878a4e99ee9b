package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TEMPLATE_DIR", "")
	t.Setenv("FONT_DIR", "")
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("APP_ENV", "test")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTemplatesCommand(t *testing.T) {
	out, err := runCLI(t, "templates")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	for _, id := range []string{"gaming", "tutorial", "vlog", "tech"} {
		if !strings.Contains(out, id) {
			t.Fatalf("output missing %q:\n%s", id, out)
		}
	}
}

func TestGenerateSkipEdit(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	out, err := runCLI(t, "generate",
		"--template", "tutorial",
		"--text", "HOW TO",
		"--position", "top",
		"--outline", "3",
		"--smile", "0.5",
		"--skip-edit",
		"--out", dst,
	)
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	f, err := os.Open(dst)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Fatalf("size = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
}

func TestGenerateKeepsSourceImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tech.png")
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "templates", "assets", "tech.png"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := os.WriteFile(src, data, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dst := filepath.Join(dir, "out.png")
	if out, err := runCLI(t, "generate", "--image", src, "--text", "NEW", "--skip-edit", "--out", dst); err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source image removed: %v", err)
	}
}

func TestGenerateRequiresTokenWithoutSkipEdit(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", "")
	dst := filepath.Join(t.TempDir(), "out.png")
	_, err := runCLI(t, "generate", "--template", "gaming", "--text", "HI", "--out", dst)
	if err == nil || !strings.Contains(err.Error(), "REPLICATE_API_TOKEN") {
		t.Fatalf("error = %v, want token error", err)
	}
}

func TestGenerateValidationError(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	_, err := runCLI(t, "generate", "--template", "gaming", "--text", "HI", "--smile", "9", "--skip-edit", "--out", dst)
	if err == nil || !strings.Contains(err.Error(), "smile must be between") {
		t.Fatalf("error = %v, want range error", err)
	}
}

func TestFormValuesPresetWithOverride(t *testing.T) {
	cmd := newGenerateCmd()
	if err := cmd.ParseFlags([]string{"--wink", "0", "--rotate-roll", "-2"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	values, err := formValues(cmd, generateOptions{text: "HI", preset: "Playful"})
	if err != nil {
		t.Fatalf("formValues: %v", err)
	}
	expr, err := domain.ParseExpression(values)
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	if expr.Smile != 0.8 || expr.PupilY != -3 {
		t.Fatalf("preset fields not applied: %+v", expr)
	}
	if expr.Wink != 0 || expr.RotateRoll != -2 {
		t.Fatalf("explicit flags not applied: %+v", expr)
	}
}

func TestGenerateUnknownPreset(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	_, err := runCLI(t, "generate", "--template", "gaming", "--text", "HI", "--preset", "grumpy", "--skip-edit", "--out", dst)
	if err == nil || !strings.Contains(err.Error(), `unknown preset "grumpy"`) {
		t.Fatalf("error = %v, want unknown preset error", err)
	}
}
