package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportRecordMarshalNaN(t *testing.T) {
	rec := ImportRecord{Title: "value1", Price: math.NaN(), Count: math.NaN()}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"value1","description":"","price":null,"count":null,"action":""}`, string(data))
}

func TestImportRecordMarshalValues(t *testing.T) {
	rec := ImportRecord{Title: "Widget", Description: "Small widget", Price: 9.99, Count: 5, Action: "create"}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Widget","description":"Small widget","price":9.99,"count":5,"action":"create"}`, string(data))
}

func TestProductWithCount(t *testing.T) {
	p := Product{ID: "123", Title: "Product 1", Description: "Description 1", Price: 100, CreatedAt: 1}

	assert.Equal(t, PublicProduct{ID: "123", Title: "Product 1", Description: "Description 1", Price: 100, Count: 10}, p.WithCount(10))
}
