package dealers

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/types"
)

// Match scores.
const (
	ScoreExact     = 100
	ScoreSubstring = 80
	ScoreNone      = 0
)

// SameWardThreshold is the lowest score reported as a same-ward match.
// Substring matches are nearby wards and count as other orders.
const SameWardThreshold = ScoreExact

// Match is one dealer eligible for an order.
type Match struct {
	DealerID uuid.UUID
	Name     string
	Location string
	Score    int
}

// ExtractWard returns the ward token of a free-text location.
func ExtractWard(location string) string {
	return types.ExtractWard(location)
}

// Score compares an order ward with a dealer location. Wards whose names are
// substrings of each other ("kasarani" and "kasarani north") score as
// substring matches.
func Score(orderWard, dealerLocation string) int {
	ward := strings.ToLower(strings.TrimSpace(orderWard))
	location := strings.ToLower(strings.TrimSpace(dealerLocation))
	if ward == "" || location == "" {
		return ScoreNone
	}
	dealerWard := ExtractWard(location)
	if ward == dealerWard || ward == location {
		return ScoreExact
	}
	if strings.Contains(location, ward) || (dealerWard != "" && strings.Contains(ward, dealerWard)) {
		return ScoreSubstring
	}
	return ScoreNone
}

// Rank scores every dealer against the ward and keeps the nonzero matches,
// best first. Dealers with equal scores keep their input order.
func Rank(orderWard string, dealers []models.User) []Match {
	matches := make([]Match, 0, len(dealers))
	for _, dealer := range dealers {
		score := Score(orderWard, dealer.Location.String())
		if score == ScoreNone {
			continue
		}
		matches = append(matches, Match{
			DealerID: dealer.ID,
			Name:     dealer.Name,
			Location: dealer.Location.String(),
			Score:    score,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
