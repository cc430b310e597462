package domain

import "errors"

var (
	ErrFolderNotFound    = errors.New("folder does not exist")
	ErrNoPDFFiles        = errors.New("no PDF files found in folder")
	ErrJobNotFound       = errors.New("job not found")
	ErrJobAlreadyDone    = errors.New("job already in a terminal state")
	ErrNothingToDownload = errors.New("no redacted files to download")
	ErrMalformedOutput   = errors.New("extraction output could not be parsed")
	ErrExternalService   = errors.New("external service call failed")
	ErrEmptyDocument     = errors.New("document has no pages")
)
