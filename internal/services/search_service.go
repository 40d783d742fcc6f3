package services

import (
	"context"
	"sort"
	"strings"

	"bloodlink/internal/apperrors"
	"bloodlink/internal/models"

	"go.uber.org/zap"
)

// DonorMatch is a donor with its search relevance
type DonorMatch struct {
	Donor models.Donor `json:"donor"`
	Score float64      `json:"score"`
}

type donorSearchStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Donor, error)
	SearchPartial(ctx context.Context, term string, limit int) ([]models.DonorMatchRow, error)
}

// SearchService finds donors for the admin back-office
type SearchService struct {
	donors donorSearchStore
	logger *zap.Logger
}

func NewSearchService(donors donorSearchStore, logger *zap.Logger) *SearchService {
	return &SearchService{donors: donors, logger: logger}
}

// SearchDonors combines an exact email lookup with partial matching on name,
// phone and barangay, keeping the best score per donor.
func (s *SearchService) SearchDonors(ctx context.Context, term string, limit int) ([]DonorMatch, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []DonorMatch{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var results []DonorMatch

	// Strategy 1: exact email (highest priority)
	if strings.Contains(term, "@") {
		donor, err := s.donors.GetByEmail(ctx, normalizeEmail(term))
		switch {
		case err == nil:
			results = append(results, DonorMatch{Donor: *donor, Score: 100})
		case !apperrors.IsNotFound(err):
			s.logger.Warn("email search failed", zap.Error(err))
		}
	}

	// Strategy 2: partial matching
	rows, err := s.donors.SearchPartial(ctx, term, limit)
	if err != nil {
		if len(results) == 0 {
			return nil, apperrors.Internal(err)
		}
		s.logger.Warn("partial search failed", zap.Error(err))
	}
	for _, row := range rows {
		results = append(results, DonorMatch{Donor: row.Donor, Score: row.Score * 10})
	}

	return combineMatches(results, limit), nil
}

// combineMatches deduplicates by donor id and sorts by score descending
func combineMatches(results []DonorMatch, limit int) []DonorMatch {
	best := make(map[string]DonorMatch, len(results))
	for _, r := range results {
		if existing, ok := best[r.Donor.ID]; !ok || r.Score > existing.Score {
			best[r.Donor.ID] = r
		}
	}

	combined := make([]DonorMatch, 0, len(best))
	for _, r := range best {
		combined = append(combined, r)
	}
	sort.Slice(combined, func(i, j int) bool {
		if combined[i].Score != combined[j].Score {
			return combined[i].Score > combined[j].Score
		}
		return combined[i].Donor.Name < combined[j].Donor.Name
	})

	if len(combined) > limit {
		combined = combined[:limit]
	}
	return combined
}
