package boiledrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/edvise/core"
)

func Test_snakeCase(t *testing.T) {
	tests := map[string]string{
		"name":        "name",
		"createdAt":   "created_at",
		"amountCents": "amount_cents",
		"testDate":    "test_date",
		"":            "",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, snakeCase(in))
		})
	}
}

func Test_allowedFields(t *testing.T) {
	allowed := allowedFields("name", "createdAt", "amountCents")
	assert.Equal(t, map[string]string{
		"name":         "name",
		"createdat":    "created_at",
		"created_at":   "created_at",
		"amountcents":  "amount_cents",
		"amount_cents": "amount_cents",
	}, allowed)

	got := core.FilterOrderings([]core.DBOrdering{
		{Field: "createdAt"},
		{Field: "password"},
		{Field: "amount_cents", Ascending: true},
		{Field: "Name", Ascending: true},
	}, allowed)
	assert.Equal(t, []core.DBOrdering{
		{Field: "created_at"},
		{Field: "amount_cents", Ascending: true},
		{Field: "name", Ascending: true},
	}, got)
}
