package batch

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
)

// ConfigFileName is the name of the mapping snapshot inside a batch archive.
const ConfigFileName = "mapping_rules.json"

// ArchiveName returns the download name for an archive generated at t.
func ArchiveName(t time.Time) string {
	return fmt.Sprintf("filled_pdfs_%s.zip", t.Format("20060102_150405"))
}

// WriteZip packages the generated documents, the CSV report and the mapping
// snapshot into a deflate-compressed ZIP archive.
func WriteZip(w io.Writer, files []File, report *Report, config []byte) error {
	zw := zip.NewWriter(w)

	for _, f := range files {
		if err := addZipEntry(zw, f.Name, f.Data); err != nil {
			return err
		}
	}

	var csv bytes.Buffer
	if err := report.WriteCSV(&csv); err != nil {
		return err
	}
	if err := addZipEntry(zw, ReportFileName, csv.Bytes()); err != nil {
		return err
	}

	if config != nil {
		if err := addZipEntry(zw, ConfigFileName, config); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

func addZipEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", name, err)
	}
	return nil
}
