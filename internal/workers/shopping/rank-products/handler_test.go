package rankproducts

import (
	"context"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-finder/internal/common/camunda"
	"price-finder/internal/common/config"
	"price-finder/internal/common/errors"
	"price-finder/internal/common/logger"
	"price-finder/internal/common/validation"
	"price-finder/internal/models"
	"price-finder/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createMockJob(key int64, variables string) entities.Job {
	return entities.Job{
		ActivatedJob: &pb.ActivatedJob{
			Key:       key,
			Type:      TaskType,
			Variables: variables,
			Retries:   3,
		},
	}
}

func price(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func sampleProducts() []models.ProductRecord {
	return []models.ProductRecord{
		{Title: "A", Price: price(29990)},
		{Title: "B"},
		{Title: "C", Price: price(24990)},
		{Title: "D", Price: price(31990)},
		{Title: "E", Price: price(24990)},
	}
}

func titles(products []models.ProductRecord) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_Ordering(t *testing.T) {
	tests := []struct {
		name       string
		sortOrder  string
		pricedOnly *bool
		want       []string
	}{
		{name: "default is descending", want: []string{"D", "A", "C", "E"}},
		{name: "ascending keeps ties stable", sortOrder: "asc", want: []string{"C", "E", "A", "D"}},
		{name: "low-high alias", sortOrder: "low-high", want: []string{"C", "E", "A", "D"}},
		{name: "unpriced kept last", sortOrder: "asc", pricedOnly: boolPtr(false), want: []string{"C", "E", "A", "D", "B"}},
		{name: "unpriced last descending", sortOrder: "high-low", pricedOnly: boolPtr(false), want: []string{"D", "A", "C", "E", "B"}},
	}

	h := NewHandler(DefaultConfig(), nil, logger.NewTestLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleProducts()
			out, err := h.Execute(context.Background(), &Input{
				Products:   in,
				SortOrder:  tt.sortOrder,
				PricedOnly: tt.pricedOnly,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(out.Products))
			assert.Equal(t, len(tt.want), out.Count)
			assert.Equal(t, []string{"A", "B", "C", "D", "E"}, titles(in), "input must not be reordered")
		})
	}
}

func TestExecute_EmptyProducts(t *testing.T) {
	h := NewHandler(DefaultConfig(), nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.NotNil(t, out.Products)
	assert.Equal(t, 0, out.Count)
}

// ==========================
// Error Handling Tests
// ==========================

func TestExecute_UnknownSortOrder(t *testing.T) {
	h := NewHandler(DefaultConfig(), nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Products: sampleProducts(), SortOrder: "random"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.DefaultSortOrder = "sideways"
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_SortOrderFromShopping(t *testing.T) {
	cfg := LoadConfig(&config.Config{Shopping: config.ShoppingConfig{DefaultSortOrder: "asc"}})

	assert.Equal(t, "asc", cfg.DefaultSortOrder)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "desc", LoadConfig(&config.Config{}).DefaultSortOrder)
}

// ==========================
// Job Input Tests
// ==========================

func TestJobInput_ValidatedAgainstRegistry(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../../configs/activity-registry.json")
	require.NoError(t, err)
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)

	var in Input
	err = camunda.ParseJobInput(createMockJob(1,
		`{"products":[{"title":"A","price":10},{"title":"B","price":null}],"sortOrder":"asc","pricedOnly":false}`),
		TaskType, v, &in)
	require.NoError(t, err)
	require.Len(t, in.Products, 2)
	assert.Nil(t, in.Products[1].Price)
	require.NotNil(t, in.PricedOnly)
	assert.False(t, *in.PricedOnly)

	err = camunda.ParseJobInput(createMockJob(2, `{"products":[{"title":"A","price":-1}]}`), TaskType, v, &in)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))

	err = camunda.ParseJobInput(createMockJob(3, `{"products":[],"sortOrder":"random"}`), TaskType, v, &in)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))
}
