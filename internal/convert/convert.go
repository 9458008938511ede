// Package convert hands a filtered BED and its isoform table to the external
// bed2gtf / bed2gff converters.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Output formats.
const (
	FormatGTF = "gtf"
	FormatGFF = "gff"
	FormatBED = "bed"
)

// Converter binaries.
const (
	BED2GTF = "bed2gtf"
	BED2GFF = "bed2gff"
)

// Converter turns a BED file into the target format at out.
type Converter interface {
	Convert(ctx context.Context, bed, isoforms, out string) error
}

// Exec runs an external converter as "<binary> <bed> <isoforms> <out>".
type Exec struct {
	Binary string
	logger *zap.Logger
}

// NewExec creates a converter for binary, looked up in PATH at run time.
func NewExec(binary string) *Exec {
	return &Exec{Binary: binary, logger: zap.NewNop()}
}

// SetLogger sets the logger for converter output.
func (e *Exec) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Convert runs the converter and waits for it to finish.
func (e *Exec) Convert(ctx context.Context, bed, isoforms, out string) error {
	path, err := exec.LookPath(e.Binary)
	if err != nil {
		return fmt.Errorf("find %s: %w", e.Binary, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, bed, isoforms, out)
	cmd.Stderr = &stderr

	e.logger.Info("running converter", zap.String("cmd", strings.Join(cmd.Args, " ")))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w: %s", e.Binary, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Copy writes the BED unchanged; used for the bed target.
type Copy struct{}

// Convert copies bed to out.
func (Copy) Convert(_ context.Context, bed, _, out string) error {
	src, err := os.Open(bed)
	if err != nil {
		return fmt.Errorf("open bed: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy bed: %w", err)
	}
	return dst.Close()
}

// ForFormat returns the converter for an output format.
func ForFormat(format string) (Converter, error) {
	switch strings.ToLower(format) {
	case FormatGTF:
		return NewExec(BED2GTF), nil
	case FormatGFF:
		return NewExec(BED2GFF), nil
	case FormatBED:
		return Copy{}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q (want %s, %s or %s)", format, FormatGTF, FormatGFF, FormatBED)
}

// OutputName replaces the .bed suffix of a file name with the format.
func OutputName(bed, format string) string {
	return strings.TrimSuffix(bed, ".bed") + "." + strings.ToLower(format)
}
