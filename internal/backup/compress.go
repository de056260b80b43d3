package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// writeCompressed streams fill's output through gzip into path. The file is
// removed again if fill or the compressor fails.
func writeCompressed(path string, fill func(w io.Writer) error) (err error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	gz := gzip.NewWriter(out)
	if err := fill(gz); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return nil
}
