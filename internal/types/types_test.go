package types

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientValidate(t *testing.T) {
	tests := []struct {
		name    string
		ing     Ingredient
		wantErr bool
	}{
		{"valid", Ingredient{Name: "砂糖", Quantity: 2, Unit: "大さじ"}, false},
		{"zero quantity", Ingredient{Name: "塩", Quantity: 0, Unit: "少々"}, false},
		{"empty name", Ingredient{Name: " ", Quantity: 1}, true},
		{"negative", Ingredient{Name: "水", Quantity: -1, Unit: "カップ"}, true},
		{"nan", Ingredient{Name: "水", Quantity: math.NaN()}, true},
		{"inf", Ingredient{Name: "水", Quantity: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ing.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecipeValidate(t *testing.T) {
	r := &Recipe{Name: "味噌汁"}
	require.NoError(t, r.Validate())
	assert.NotNil(t, r.Ingredients)
	assert.Empty(t, r.Ingredients)

	assert.Error(t, (&Recipe{Name: ""}).Validate())
	assert.Error(t, (&Recipe{Name: "味噌汁", Ingredients: []Ingredient{{Name: "味噌", Quantity: -2}}}).Validate())

	var nilRecipe *Recipe
	assert.Error(t, nilRecipe.Validate())
}

func TestStageError(t *testing.T) {
	base := fmt.Errorf("%w: status 404", ErrDownload)
	err := NewStageError(StageDownload, base)

	assert.ErrorIs(t, err, ErrDownload)
	assert.Equal(t, "download stage failed: download failed: status 404", err.Error())

	stage, ok := StageOf(fmt.Errorf("run: %w", err))
	require.True(t, ok)
	assert.Equal(t, StageDownload, stage)

	_, ok = StageOf(errors.New("plain"))
	assert.False(t, ok)

	assert.Nil(t, NewStageError(StageEmbedding, nil))

	timeout := NewStageError(StageExtraction, context.DeadlineExceeded)
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)
}

func TestChunkEnd(t *testing.T) {
	c := Chunk{Index: 1, Start: 6, Text: "にんじん"}
	assert.Equal(t, 6+len("にんじん"), c.End())
}

func TestEmbeddedChunksLen(t *testing.T) {
	var nilSet *EmbeddedChunks
	assert.Equal(t, 0, nilSet.Len())
	assert.Equal(t, 2, (&EmbeddedChunks{Items: make([]ChunkEmbedding, 2)}).Len())
}
