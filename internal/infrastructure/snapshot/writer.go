package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/ucl-replacement-race/internal/platform/logging"
	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

// encoder keeps struct fields in declaration order and sorts map keys so
// repeated runs produce identical bytes for identical input.
var encoder = sonic.Config{
	SortMapKeys:    true,
	ValidateString: true,
}.Froze()

const indent = "  "

// FileWriter writes JSON artifacts below a root directory.
type FileWriter struct {
	root   string
	logger *logging.Logger
}

func NewFileWriter(root string, logger *logging.Logger) *FileWriter {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(root) == "" {
		root = "data"
	}
	return &FileWriter{root: root, logger: logger.Named("snapshot_writer")}
}

func (w *FileWriter) Root() string {
	return w.root
}

// Encode renders payload as 2-space indented JSON with a trailing newline.
func Encode(payload any) ([]byte, error) {
	raw, err := encoder.MarshalIndent(payload, "", indent)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(raw)
	_ = buf.WriteByte('\n')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Write replaces the file at rel atomically: the payload lands in a temp
// file in the same directory which is then renamed over the target.
func (w *FileWriter) Write(ctx context.Context, rel string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(w.root, filepath.FromSlash(rel))

	data, err := Encode(payload)
	if err != nil {
		return errors.Wrapf(err, "snapshot %s", rel)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", target)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", target)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "write %s", target)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "close %s", target)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return errors.Wrapf(err, "chmod %s", target)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return errors.Wrapf(err, "rename into %s", target)
	}

	w.logger.InfoContext(ctx, "snapshot written", "path", target, "bytes", len(data))
	return nil
}

// WriteAll attempts every artifact and returns the first failure.
func (w *FileWriter) WriteAll(ctx context.Context, artifacts []usecase.Artifact) error {
	var first error
	for _, artifact := range artifacts {
		if err := w.Write(ctx, artifact.Path, artifact.Payload); err != nil {
			w.logger.ErrorContext(ctx, "snapshot write failed", "path", artifact.Path, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
