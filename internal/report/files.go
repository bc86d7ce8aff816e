package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"noticekit/internal/notice"
)

const (
	// DefaultValidationReportName is the file name of the validation notices report.
	DefaultValidationReportName = "report.json"
	// DefaultSystemErrorsReportName is the file name of the system errors report.
	DefaultSystemErrorsReportName = "system_errors.json"
)

// FileNames selects where WriteFiles puts the two documents.
type FileNames struct {
	Validation   string
	SystemErrors string
}

// DefaultFileNames returns the conventional report file names.
func DefaultFileNames() FileNames {
	return FileNames{
		Validation:   DefaultValidationReportName,
		SystemErrors: DefaultSystemErrorsReportName,
	}
}

// WriteFiles exports both documents of r into dir.
// Each file is replaced atomically; a reader never sees a partial report.
func WriteFiles(dir string, names FileNames, r *notice.Recorder) error {
	if names.Validation == "" {
		names.Validation = DefaultValidationReportName
	}
	if names.SystemErrors == "" {
		names.SystemErrors = DefaultSystemErrorsReportName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	validation, err := ExportValidationNotices(r)
	if err != nil {
		return err
	}
	if err := writeDocument(filepath.Join(dir, names.Validation), validation); err != nil {
		return err
	}
	system, err := ExportSystemErrors(r)
	if err != nil {
		return err
	}
	return writeDocument(filepath.Join(dir, names.SystemErrors), system)
}

// WriteFile writes doc to path atomically.
func WriteFile(path string, doc Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return writeDocument(path, doc)
}

func writeDocument(path string, doc Document) (err error) {
	var buf bytes.Buffer
	if err = Write(&buf, doc); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
