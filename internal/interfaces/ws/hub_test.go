package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inventra/inventra-api/internal/domain/entity"
)

func boolPtr(b bool) *bool { return &b }

func TestSubscriptionFilter_Matches(t *testing.T) {
	p := &entity.Product{
		ID:            "p-1",
		CategoryID:    "cat-1",
		UnitMeasureID: "um-kg",
		Active:        true,
	}

	cases := []struct {
		name   string
		filter subscriptionFilter
		want   bool
	}{
		{"sin filtros pasa todo", subscriptionFilter{}, true},
		{"activo coincide", subscriptionFilter{Active: boolPtr(true)}, true},
		{"activo no coincide", subscriptionFilter{Active: boolPtr(false)}, false},
		{"categoria coincide", subscriptionFilter{CategoryID: "cat-1"}, true},
		{"categoria no coincide", subscriptionFilter{CategoryID: "cat-2"}, false},
		{"unidad coincide", subscriptionFilter{UnitMeasureID: "um-kg"}, true},
		{"unidad no coincide", subscriptionFilter{UnitMeasureID: "um-un"}, false},
		{"combinado coincide", subscriptionFilter{Active: boolPtr(true), CategoryID: "cat-1"}, true},
		{"combinado falla por un criterio", subscriptionFilter{Active: boolPtr(true), CategoryID: "cat-2"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.filter.matches(p))
		})
	}
}
