package redact

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"taxdocs/internal/domain"
)

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// RedactFirstPage writes a single-page PDF to dst containing only the first
// page of src, with the given areas permanently blanked: the text operators
// under each area are removed from the page content and an opaque box is
// flattened on top. Returns domain.ErrEmptyDocument for a zero-page source.
func RedactFirstPage(src, dst string, areas []domain.RedactionArea) error {
	conf := newConfiguration()

	pageCount, err := api.PageCountFile(src)
	if err != nil {
		return fmt.Errorf("counting pages: %w", err)
	}
	if pageCount == 0 {
		return domain.ErrEmptyDocument
	}

	tmp := dst + ".trim"
	if err := api.TrimFile(src, tmp, []string{"1"}, conf); err != nil {
		return fmt.Errorf("extracting first page: %w", err)
	}
	defer func() { _ = os.Remove(tmp) }()

	ctx, err := api.ReadContextFile(tmp)
	if err != nil {
		return fmt.Errorf("reading trimmed page: %w", err)
	}

	if err := scrubFirstPage(ctx, areas); err != nil {
		return fmt.Errorf("redacting page content: %w", err)
	}

	if err := api.WriteContextFile(ctx, dst); err != nil {
		return fmt.Errorf("writing redacted output: %w", err)
	}
	return nil
}

// scrubFirstPage rewrites the content stream(s) of page 1 through
// ScrubContent. Multiple content streams are concatenated into the first
// stream; the remainder are blanked.
func scrubFirstPage(ctx *model.Context, areas []domain.RedactionArea) error {
	pageHeight := 842.0 // A4 fallback
	if dims, err := ctx.PageDims(); err == nil && len(dims) > 0 && dims[0].Height > 0 {
		pageHeight = dims[0].Height
	}

	d, _, _, err := ctx.PageDict(1, false)
	if err != nil {
		return fmt.Errorf("resolving page dict: %w", err)
	}
	if d == nil {
		return fmt.Errorf("page dict missing")
	}

	obj, found := d.Find("Contents")
	if !found {
		return nil
	}

	var streams []*types.StreamDict
	collect := func(o types.Object) error {
		sd, _, err := ctx.DereferenceStreamDict(o)
		if err != nil {
			return err
		}
		if sd != nil {
			streams = append(streams, sd)
		}
		return nil
	}

	resolved, err := ctx.Dereference(obj)
	if err != nil {
		return fmt.Errorf("dereferencing contents: %w", err)
	}
	if arr, ok := resolved.(types.Array); ok {
		for _, el := range arr {
			if err := collect(el); err != nil {
				return fmt.Errorf("dereferencing content stream: %w", err)
			}
		}
	} else {
		if err := collect(obj); err != nil {
			return fmt.Errorf("dereferencing content stream: %w", err)
		}
	}
	if len(streams) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, sd := range streams {
		if err := sd.Decode(); err != nil {
			return fmt.Errorf("decoding content stream: %w", err)
		}
		buf.Write(sd.Content)
		buf.WriteByte('\n')
	}

	streams[0].Content = ScrubContent(buf.Bytes(), areas, pageHeight)
	if err := streams[0].Encode(); err != nil {
		return fmt.Errorf("encoding content stream: %w", err)
	}
	for _, sd := range streams[1:] {
		sd.Content = []byte(" ")
		if err := sd.Encode(); err != nil {
			return fmt.Errorf("encoding blanked stream: %w", err)
		}
	}
	return nil
}
