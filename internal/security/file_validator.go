package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultThresholdKB is the size above which files are validated before loading.
const DefaultThresholdKB = 512

// ErrRejected marks a file that should not be loaded as C++ source.
var ErrRejected = errors.New("file rejected")

// FileValidator validates large files before loading them fully.
// Small files are always accepted.
type FileValidator struct {
	ValidationThreshold int64 // Files larger than this are validated first
	HeaderSize          int64 // Size of header to read for validation
}

func NewFileValidator(thresholdKB int64) *FileValidator {
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		HeaderSize:          64 * 1024, // 64KB header
	}
}

// ValidateLargeFile reads only the header of a large file and rejects binary data or
// content with no recognizable C++ source. Rejections wrap ErrRejected; stat and read
// failures are returned unwrapped.
func (fv *FileValidator) ValidateLargeFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() <= fv.ValidationThreshold {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, fv.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	header = header[:n]

	if isBinaryData(header) {
		return fmt.Errorf("%w: %s appears to be binary", ErrRejected, path)
	}
	if !hasCppPatterns(header) {
		return fmt.Errorf("%w: no C++ patterns in the first %d bytes of %s", ErrRejected, n, path)
	}
	return nil
}

// isBinaryData reports whether more than 30% of data is control bytes other than
// tab, LF, VT, FF and CR.
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}

var cppPatterns = [][]byte{
	[]byte("#include"),
	[]byte("#pragma"),
	[]byte("#define"),
	[]byte("module "),
	[]byte("import "),
	[]byte("export "),
	[]byte("namespace "),
	[]byte("class "),
	[]byte("struct "),
	[]byte("template"),
	[]byte("std::"),
	[]byte("int "),
	[]byte("void "),
	[]byte("//"),
	[]byte("/*"),
}

func hasCppPatterns(header []byte) bool {
	for _, pattern := range cppPatterns {
		if bytes.Contains(header, pattern) {
			return true
		}
	}
	return false
}
