package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Format selects the output document engine.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ErrRenderFailed wraps every failure inside a render call. Callers treat
// rendering as a degradable step and should not need to distinguish causes.
var ErrRenderFailed = errors.New("document rendering failed")

// Renderer converts assignment content into formatted documents under a
// single output directory. Filenames carry a per-request unique id, so
// concurrent renders never contend on the same path.
type Renderer struct {
	outputDir string
	logger    zerolog.Logger
}

// NewRenderer builds a renderer writing into outputDir.
func NewRenderer(outputDir string, logger zerolog.Logger) *Renderer {
	return &Renderer{
		outputDir: outputDir,
		logger:    logger.With().Str("component", "renderer").Logger(),
	}
}

// OutputDir returns the directory generated documents are written to.
func (r *Renderer) OutputDir() string {
	return r.outputDir
}

// Render cleans the content, parses it into blocks, and writes a document in
// the requested format, returning the path of the created file. Both engines
// consume the same parsed blocks; only layout differs.
func (r *Renderer) Render(content string, format Format, filename string, info *StudentInfo) (path string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", ErrRenderFailed, recovered)
		}
	}()

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	blocks := ParseBlocks(CleanLatex(content))
	path = filepath.Join(r.outputDir, filename)

	switch format {
	case FormatDOCX:
		err = writeDOCX(path, blocks, info)
	case FormatPDF, "":
		err = writePDF(path, blocks, info)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	r.logger.Info().Str("file", path).Str("format", string(format)).Msg("document rendered")

	return path, nil
}
