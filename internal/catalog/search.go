package catalog

import (
	"context"
	"strings"
	"unicode/utf8"

	"marquee/internal/media"
)

// Search runs a title search. Queries shorter than the configured minimum
// (after trimming) return an empty page without contacting the metadata
// service.
func (c *Catalog) Search(ctx context.Context, query string, page int) (*media.Page, error) {
	if page < 1 {
		page = 1
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < c.opts.MinQueryLength {
		return &media.Page{Page: page}, nil
	}

	res, err := c.meta.Search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
