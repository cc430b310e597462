// Package reconcile aligns extraction results back to source-file identity.
// Extracted rows carry no personal data, so correlation is purely
// positional: the FileMapping number is the order the extractor consumed
// the files.
package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"taxdocs/internal/domain"
	"taxdocs/internal/fileorder"
	"taxdocs/internal/redact"
)

// codeLength is the number of leading filename characters used as the
// de-identification code.
const codeLength = 4

// PersonalInfo derives the ordered de-identification entries for the
// source folder. When a file mapping exists in targetFolder its order is
// authoritative; otherwise order is re-derived from a fresh listing. The
// mapping is trusted as-is and not validated against the current source
// folder contents.
func PersonalInfo(sourceFolder, targetFolder string) ([]domain.PersonalInfoEntry, error) {
	if _, err := os.Stat(sourceFolder); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, sourceFolder)
		}
		return nil, fmt.Errorf("stat source folder: %w", err)
	}

	mapping, err := LoadMapping(targetFolder)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		return fromMapping(mapping), nil
	}
	return fromListing(sourceFolder)
}

// LoadMapping reads the file mapping artifact from targetFolder. A missing
// file returns nil with no error; a malformed file is an error.
func LoadMapping(targetFolder string) ([]domain.FileMapping, error) {
	path := filepath.Join(targetFolder, redact.MappingFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading file mapping: %w", err)
	}
	var mapping []domain.FileMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parsing file mapping: %w", err)
	}
	return mapping, nil
}

func fromMapping(mapping []domain.FileMapping) []domain.PersonalInfoEntry {
	entries := make([]domain.PersonalInfoEntry, 0, len(mapping))
	for _, m := range mapping {
		code := deriveCode(m.OriginalName)
		if code == "" {
			continue
		}
		entries = append(entries, domain.PersonalInfoEntry{
			Order:            m.Number,
			Code:             code,
			OriginalFilename: m.OriginalName,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })
	return entries
}

func fromListing(sourceFolder string) ([]domain.PersonalInfoEntry, error) {
	entries, err := os.ReadDir(sourceFolder)
	if err != nil {
		return nil, fmt.Errorf("reading source folder: %w", err)
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

	var out []domain.PersonalInfoEntry
	for i, name := range files {
		code := deriveCode(name)
		if code == "" {
			continue
		}
		out = append(out, domain.PersonalInfoEntry{
			Order:            i + 1,
			Code:             code,
			OriginalFilename: name,
		})
	}
	return out, nil
}

// deriveCode returns the first codeLength characters of the filename stem,
// or the whole stem when shorter. Whitespace-only codes are empty.
func deriveCode(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	runes := []rune(stem)
	if len(runes) > codeLength {
		runes = runes[:codeLength]
	}
	code := string(runes)
	if strings.TrimSpace(code) == "" {
		return ""
	}
	return code
}
