// Package redact implements the batch first-page redaction pipeline:
// scanning the source folder, numbering files in canonical order, blanking
// the configured regions and persisting the file mapping artifact.
package redact

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"taxdocs/internal/domain"
	"taxdocs/internal/fileorder"
	"taxdocs/internal/port"
)

// MappingFilename is the file mapping artifact written to the target folder.
const MappingFilename = "file_mapping.json"

// DefaultBatchSize bounds how many files are prepared per batch.
const DefaultBatchSize = 50

// Engine performs batch redaction from a source folder into a target folder.
type Engine struct {
	sourceFolder string
	targetFolder string
	batchSize    int
	areas        []domain.RedactionArea

	// redactFile is swapped out in tests.
	redactFile func(src, dst string, areas []domain.RedactionArea) error
}

// NewEngine creates an Engine. A batchSize <= 0 falls back to
// DefaultBatchSize; empty areas fall back to the default regions.
func NewEngine(sourceFolder, targetFolder string, batchSize int, areas []domain.RedactionArea) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if len(areas) == 0 {
		areas = domain.DefaultRedactionAreas
	}
	return &Engine{
		sourceFolder: sourceFolder,
		targetFolder: targetFolder,
		batchSize:    batchSize,
		areas:        areas,
		redactFile:   RedactFirstPage,
	}
}

// listPDFs returns the .pdf filenames in folder (case-insensitive extension
// match) sorted in canonical processing order.
func listPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, folder)
		}
		return nil, fmt.Errorf("reading folder %s: %w", folder, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			files = append(files, e.Name())
		}
	}
	fileorder.Sort(files)
	return files, nil
}

// Scan lists the source folder's PDF files with their sizes, in canonical
// processing order.
func (e *Engine) Scan() (*domain.ScanResult, error) {
	files, err := listPDFs(e.sourceFolder)
	if err != nil {
		return nil, err
	}

	result := &domain.ScanResult{Files: []domain.SourceFile{}}
	for _, name := range files {
		info, err := os.Stat(filepath.Join(e.sourceFolder, name))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		result.Files = append(result.Files, domain.SourceFile{
			Filename:  name,
			SizeBytes: info.Size(),
		})
		result.TotalSizeBytes += info.Size()
	}
	result.Count = len(result.Files)
	return result, nil
}

// clearTarget removes pre-existing .pdf outputs so each run fully
// supersedes the last, creating the folder if absent.
func (e *Engine) clearTarget() error {
	entries, err := os.ReadDir(e.targetFolder)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(e.targetFolder, 0o755)
		}
		return fmt.Errorf("reading target folder: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		if err := os.Remove(filepath.Join(e.targetFolder, entry.Name())); err != nil {
			return fmt.Errorf("clearing target folder: %w", err)
		}
	}
	return nil
}

// RedactAll redacts every source PDF in canonical order into numbered
// single-page outputs and writes the file mapping artifact. Per-file
// failures are logged and skipped; folder-level failures abort the run
// without writing a mapping.
func (e *Engine) RedactAll(onProgress port.ProgressFunc) (*domain.RedactionResult, error) {
	if onProgress == nil {
		onProgress = func(domain.JobStatus, int, string) {}
	}

	onProgress(domain.JobStatusRunning, 0, "scanning source folder")

	files, err := listPDFs(e.sourceFolder)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoPDFFiles, e.sourceFolder)
	}

	if err := e.clearTarget(); err != nil {
		return nil, err
	}

	onProgress(domain.JobStatusRunning, 5, fmt.Sprintf("found %d files, starting redaction", len(files)))

	var batches [][]string
	for i := 0; i < len(files); i += e.batchSize {
		end := i + e.batchSize
		if end > len(files) {
			end = len(files)
		}
		batches = append(batches, files[i:end])
	}

	total := len(files)
	processedCount := 0
	var processed []domain.ProcessedFile
	var mapping []domain.FileMapping

	for batchIdx, batch := range batches {
		// Derived from processedCount, not the batch index: with a partial
		// final batch the two scales diverge and the percent must never
		// fall below the previous boundary's files-processed percent.
		onProgress(domain.JobStatusRunning,
			10+(processedCount*80)/total,
			fmt.Sprintf("processing batch %d/%d", batchIdx+1, len(batches)))

		for i, filename := range batch {
			number := processedCount + i + 1
			maskedName := fmt.Sprintf("%d.pdf", number)
			src := filepath.Join(e.sourceFolder, filename)
			dst := filepath.Join(e.targetFolder, maskedName)

			// Every scanned file consumes a mapping slot so numbering stays
			// dense and aligned with the extraction order.
			mapping = append(mapping, domain.FileMapping{
				Number:       number,
				OriginalName: filename,
				MaskedName:   maskedName,
			})

			if err := e.redactFile(src, dst, e.areas); err != nil {
				log.Printf("redact: skipping %s: %v", filename, err)
				continue
			}

			info, err := os.Stat(dst)
			if err != nil {
				log.Printf("redact: output missing for %s: %v", filename, err)
				continue
			}
			processed = append(processed, domain.ProcessedFile{
				OriginalName: filename,
				MaskedName:   maskedName,
				SizeBytes:    info.Size(),
			})
		}

		processedCount += len(batch)
		onProgress(domain.JobStatusRunning,
			10+(processedCount*80)/total,
			fmt.Sprintf("processed %d/%d files", processedCount, total))
	}

	onProgress(domain.JobStatusRunning, 90, "writing file mapping")
	if err := e.writeMapping(mapping); err != nil {
		return nil, err
	}

	result := &domain.RedactionResult{
		ProcessedFiles: processed,
		FileMapping:    mapping,
		TotalProcessed: len(processed),
		TargetFolder:   e.targetFolder,
	}
	onProgress(domain.JobStatusCompleted, 100,
		fmt.Sprintf("redaction complete: %d files processed", len(processed)))
	return result, nil
}

// writeMapping persists the mapping artifact, fully replacing any previous
// run's file.
func (e *Engine) writeMapping(mapping []domain.FileMapping) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding file mapping: %w", err)
	}
	path := filepath.Join(e.targetFolder, MappingFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file mapping: %w", err)
	}
	return nil
}
