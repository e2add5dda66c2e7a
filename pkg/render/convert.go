package render

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/msttree/pkg/errors"
)

// rsvgBinary is the converter used for PDF and PNG output.
var rsvgBinary = "rsvg-convert"

// ToPDF converts an SVG drawing to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf")
}

// ToPNG converts an SVG drawing to PNG. A scale of 2 doubles the
// resolution; non-positive scales render at 1.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

// convert pipes svg through rsvg-convert. A missing converter is reported
// as UNSUPPORTED, a failed conversion as INTERNAL_ERROR.
func convert(svg []byte, format string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(rsvgBinary)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err,
			"%s output needs rsvg-convert (apt install librsvg2-bin, brew install librsvg)", format)
	}

	var out, stderr bytes.Buffer
	cmd := exec.Command(path, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rsvg-convert %s: %s", format, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
