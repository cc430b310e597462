package port

import "context"

// VisionModel extracts structured data from a PDF using a vision-language
// model. The returned text is freeform model output; callers must coerce it
// into the expected schema.
type VisionModel interface {
	GenerateFromPDF(ctx context.Context, pdf []byte, prompt string) (string, error)
}
