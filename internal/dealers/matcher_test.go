package dealers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/types"
)

func TestExtractWard(t *testing.T) {
	cases := map[string]string{
		"Kasarani, Nairobi":   "kasarani",
		"  Roysambu ":         "roysambu",
		"Githurai 45, Ruiru,": "githurai 45",
		"":                    "",
	}
	for input, want := range cases {
		assert.Equal(t, want, ExtractWard(input), input)
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		name     string
		ward     string
		location string
		want     int
	}{
		{name: "exact ward", ward: "kasarani", location: "Kasarani, Nairobi", want: ScoreExact},
		{name: "exact without comma", ward: "kasarani", location: " KASARANI ", want: ScoreExact},
		{name: "dealer location contains ward", ward: "kasarani", location: "Kasarani North, Nairobi", want: ScoreSubstring},
		{name: "ward contains dealer ward", ward: "kasarani north", location: "Kasarani", want: ScoreSubstring},
		{name: "different ward", ward: "kasarani", location: "Westlands, Nairobi", want: ScoreNone},
		{name: "empty dealer location", ward: "kasarani", location: "", want: ScoreNone},
		{name: "empty ward", ward: "", location: "Kasarani", want: ScoreNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.ward, tc.location))
		})
	}
}

func TestRankKeepsNonzeroBestFirst(t *testing.T) {
	near := models.User{ID: uuid.New(), Name: "near", Location: types.ParseLocation("Kasarani North")}
	exact := models.User{ID: uuid.New(), Name: "exact", Location: types.ParseLocation("Kasarani, Nairobi")}
	far := models.User{ID: uuid.New(), Name: "far", Location: types.ParseLocation("Karen")}
	exact2 := models.User{ID: uuid.New(), Name: "exact2", Location: types.ParseLocation(`{"ward":"Kasarani"}`)}

	ranked := Rank("kasarani", []models.User{near, exact, far, exact2})

	require.Len(t, ranked, 3)
	assert.Equal(t, exact.ID, ranked[0].DealerID)
	assert.Equal(t, exact2.ID, ranked[1].DealerID)
	assert.Equal(t, near.ID, ranked[2].DealerID)
	assert.Equal(t, ScoreSubstring, ranked[2].Score)
}
