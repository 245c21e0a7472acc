package service

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/metrics"
)

// SearchPublications matches query against publication file names in every
// configured category folder. A blank query returns an empty result without
// reading the archive. Unreadable categories are skipped.
func (s *Service) SearchPublications(ctx context.Context, query string) ([]domain.SearchResult, error) {
	results := []domain.SearchResult{}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return results, nil
	}

	for _, cat := range s.site.Categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := filepath.Join(s.config.PublicationsDir, cat.Dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			metrics.SearchSkippedCategoriesTotal.WithLabelValues(cat.Slug).Inc()
			s.log.Warn().Err(err).Str("category", cat.Slug).Str("dir", dir).Msg("skipping unreadable publication category")
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if !strings.Contains(strings.ToLower(name), needle) {
				continue
			}
			results = append(results, domain.SearchResult{
				Title:    strings.TrimSuffix(name, filepath.Ext(name)),
				Category: cat.Slug,
				Path:     path.Join("/publications", cat.Slug, name),
			})
		}
	}

	return results, nil
}
