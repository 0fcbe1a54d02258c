package tmpl

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"tickteer/internal/logging"
)

// Origin records where a loaded template came from.
type Origin string

const (
	OriginFile    Origin = "file"
	OriginInline  Origin = "inline"
	OriginDefault Origin = "default"
)

// Load picks the daemon template once at startup. A readable file wins, then
// the inline text, then DefaultTemplate. A missing file is logged and skipped;
// any other read failure is returned.
func Load(inline, file string, logger *slog.Logger) (string, Origin, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	fallback := func() (string, Origin, error) {
		if inline != "" {
			return inline, OriginInline, nil
		}
		return DefaultTemplate, OriginDefault, nil
	}

	path := strings.TrimSpace(file)
	if path == "" {
		return fallback()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logger, "template file not found; using fallback template", "template_file_missing",
				logging.String("template_file", path),
				logging.String(logging.FieldErrorHint, "check daemon.template_file or --use-stdin-template-file"),
				logging.String(logging.FieldImpact, "tickets are rendered with the inline or built-in template"),
			)
			return fallback()
		}
		return "", "", fmt.Errorf("read template file: %w", err)
	}
	logger.Info("loaded template from file", logging.String("template_file", path))
	return string(data), OriginFile, nil
}
