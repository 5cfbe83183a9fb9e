package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ════════════════════════════════════════════════════════════════════
// PDF export of the HTML report via wkhtmltopdf or headless Chromium
// ════════════════════════════════════════════════════════════════════

// PDFEngine names the external converter.
type PDFEngine string

const (
	EngineAuto     PDFEngine = ""
	EngineWKHTML   PDFEngine = "wkhtmltopdf"
	EngineChromium PDFEngine = "chromium"
	EngineNone     PDFEngine = "none" // write the HTML next to the requested PDF path
)

var chromiumBinaries = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// PDFConfig controls GeneratePDF.
type PDFConfig struct {
	Engine     PDFEngine
	PageSize   string
	Landscape  bool
	Margin     string
	OutputPath string
	Timeout    time.Duration
}

// DefaultPDFConfig returns A4 portrait with 12mm margins and engine
// auto-detection.
func DefaultPDFConfig() PDFConfig {
	return PDFConfig{
		Engine:   EngineAuto,
		PageSize: "A4",
		Margin:   "12mm",
		Timeout:  time.Minute,
	}
}

// DetectPDFEngine returns the first converter found on PATH, or EngineNone.
func DetectPDFEngine() PDFEngine {
	if _, err := exec.LookPath("wkhtmltopdf"); err == nil {
		return EngineWKHTML
	}
	if chromiumPath() != "" {
		return EngineChromium
	}
	return EngineNone
}

// GeneratePDF converts html into cfg.OutputPath and returns the path it
// wrote. Without a converter the HTML is written with a .html extension and
// that path is returned instead.
func GeneratePDF(html string, cfg PDFConfig) (string, error) {
	if cfg.OutputPath == "" {
		return "", errors.New("pdf output path is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}

	engine := cfg.Engine
	if engine == EngineAuto {
		engine = DetectPDFEngine()
	}

	switch engine {
	case EngineWKHTML, EngineChromium:
		src, err := writeTempHTML(html)
		if err != nil {
			return "", err
		}
		defer os.Remove(src)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if engine == EngineWKHTML {
			err = runWKHTML(ctx, src, cfg)
		} else {
			err = runChromium(ctx, src, cfg)
		}
		if err != nil {
			return "", err
		}
		return cfg.OutputPath, nil
	case EngineNone:
		return writeHTMLFallback(html, cfg.OutputPath)
	default:
		return "", fmt.Errorf("unsupported pdf engine %q", engine)
	}
}

func runWKHTML(ctx context.Context, src string, cfg PDFConfig) error {
	orientation := "Portrait"
	if cfg.Landscape {
		orientation = "Landscape"
	}
	args := []string{
		"--page-size", cfg.PageSize,
		"--orientation", orientation,
		"--margin-top", cfg.Margin,
		"--margin-bottom", cfg.Margin,
		"--margin-left", cfg.Margin,
		"--margin-right", cfg.Margin,
		"--encoding", "UTF-8",
		"--enable-local-file-access",
		"--quiet",
		src,
		cfg.OutputPath,
	}
	if out, err := exec.CommandContext(ctx, "wkhtmltopdf", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("wkhtmltopdf: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func runChromium(ctx context.Context, src string, cfg PDFConfig) error {
	bin := chromiumPath()
	if bin == "" {
		return errors.New("chromium not found in PATH")
	}
	abs, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("resolving pdf path: %w", err)
	}
	args := []string{
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--print-to-pdf=" + abs,
		"--no-pdf-header-footer",
	}
	if cfg.Landscape {
		args = append(args, "--landscape")
	}
	args = append(args, "file://"+src)

	if out, err := exec.CommandContext(ctx, bin, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("chromium print-to-pdf: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func chromiumPath() string {
	for _, name := range chromiumBinaries {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func writeTempHTML(html string) (string, error) {
	f, err := os.CreateTemp("", "openstress-*.html")
	if err != nil {
		return "", fmt.Errorf("creating temp html: %w", err)
	}
	if _, err := f.WriteString(html); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing temp html: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func writeHTMLFallback(html, outputPath string) (string, error) {
	if ext := filepath.Ext(outputPath); strings.EqualFold(ext, ".pdf") {
		outputPath = strings.TrimSuffix(outputPath, ext) + ".html"
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing html fallback: %w", err)
	}
	return outputPath, nil
}
