package lifecycle

import (
	"errors"
	"testing"

	"sourcing/internal/models"
)

func TestScore(t *testing.T) {
	cases := []struct {
		scores models.Scores
		want   int
	}{
		{models.Scores{Price: 80, Quality: 90, Delivery: 70, Vendor: 60}, 77},
		{models.Scores{Price: 100, Quality: 100, Delivery: 100, Vendor: 100}, 100},
		{models.Scores{}, 0},
		{models.Scores{Price: 50, Quality: 50, Delivery: 50, Vendor: 50}, 50},
		// 0.3+0.3+0.2+0.2 over 1,1,1,1 = 1.0 exactly, no rounding drift
		{models.Scores{Price: 1, Quality: 1, Delivery: 1, Vendor: 1}, 1},
		// 25*0.3+80*0.3+60*0.2+45*0.2 = 7.5+24+12+9 = 52.5, rounds to 53
		{models.Scores{Price: 25, Quality: 80, Delivery: 60, Vendor: 45}, 53},
	}

	for _, tc := range cases {
		if got := Score(tc.scores); got != tc.want {
			t.Errorf("Score(%+v) = %d, want %d", tc.scores, got, tc.want)
		}
	}
}

func TestValidateScores(t *testing.T) {
	if err := ValidateScores(models.Scores{Price: 0, Quality: 100, Delivery: 50, Vendor: 1}); err != nil {
		t.Fatal(err)
	}
	if err := ValidateScores(models.Scores{Price: 101}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for score over 100, got %v", err)
	}
	if err := ValidateScores(models.Scores{Vendor: -1}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for negative score, got %v", err)
	}
}

func TestRank(t *testing.T) {
	mk := func(id string, status models.ProposalStatus, overall int, total float64) models.Proposal {
		return models.Proposal{
			Id:         id,
			Status:     status,
			Evaluation: models.Evaluation{Scores: models.Scores{Overall: overall}},
			Pricing:    models.ProposalPricing{TotalPrice: total},
		}
	}

	input := []models.Proposal{
		mk("low", models.ProposalSubmitted, 60, 1000),
		mk("draft", models.ProposalDraft, 99, 1),
		mk("tie-expensive", models.ProposalShortlisted, 80, 2000),
		mk("withdrawn", models.ProposalWithdrawn, 95, 1),
		mk("tie-cheap", models.ProposalSubmitted, 80, 1500),
		mk("accepted", models.ProposalAccepted, 90, 1),
	}

	ranked := Rank(input)

	want := []string{"tie-cheap", "tie-expensive", "low"}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d ranked proposals, got %d", len(want), len(ranked))
	}
	for i, id := range want {
		if ranked[i].Id != id {
			t.Errorf("position %d: expected %s, got %s", i, id, ranked[i].Id)
		}
	}

	// the input slice order is preserved
	if input[0].Id != "low" || input[1].Id != "draft" {
		t.Fatal("Rank must not mutate its input")
	}
}
