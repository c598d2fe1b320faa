package lifecycle

import (
	"fmt"
	"math"
	"sort"

	"sourcing/internal/models"
)

// Weighted evaluation model used for buyer comparison.
const (
	weightPrice    = 0.3
	weightQuality  = 0.3
	weightDelivery = 0.2
	weightVendor   = 0.2
)

// Score computes the weighted overall score from the component scores.
// Deterministic; inputs and output are in [0, 100].
func Score(s models.Scores) int {
	return int(math.Round(
		float64(s.Price)*weightPrice +
			float64(s.Quality)*weightQuality +
			float64(s.Delivery)*weightDelivery +
			float64(s.Vendor)*weightVendor))
}

// ValidateScores checks that every component score is within [0, 100].
func ValidateScores(s models.Scores) error {
	for _, v := range []int{s.Price, s.Quality, s.Delivery, s.Vendor} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: evaluation scores must be between 0 and 100", models.ErrValidation)
		}
	}
	return nil
}

// Rank orders a project's proposals for comparison: overall score descending,
// total price ascending on ties, restricted to submitted and shortlisted
// proposals. The input slice is not mutated.
func Rank(proposals []models.Proposal) []models.Proposal {
	ranked := make([]models.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if p.Status == models.ProposalSubmitted || p.Status == models.ProposalShortlisted {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Evaluation.Scores.Overall != b.Evaluation.Scores.Overall {
			return a.Evaluation.Scores.Overall > b.Evaluation.Scores.Overall
		}
		return a.Pricing.TotalPrice < b.Pricing.TotalPrice
	})
	return ranked
}
