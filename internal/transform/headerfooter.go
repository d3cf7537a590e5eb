package transform

import (
	"context"

	"chalk/internal/notebook"
	"chalk/internal/services"
)

// IncludeHeaderFooter splices course-wide boilerplate cells around each
// document. Paths are optional; an empty path skips that side.
type IncludeHeaderFooter struct {
	HeaderPath string
	FooterPath string
}

func (IncludeHeaderFooter) Name() string { return "headerfooter" }

func (s IncludeHeaderFooter) Apply(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	if s.HeaderPath != "" {
		header, err := notebook.Read(s.HeaderPath)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "transform", "include header",
				s.HeaderPath, err)
		}
		nb.Cells = append(append([]notebook.Cell(nil), header.Cells...), nb.Cells...)
	}
	if s.FooterPath != "" {
		footer, err := notebook.Read(s.FooterPath)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "transform", "include footer",
				s.FooterPath, err)
		}
		nb.Cells = append(nb.Cells, footer.Cells...)
	}
	return nil
}
