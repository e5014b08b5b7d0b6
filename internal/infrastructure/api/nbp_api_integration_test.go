// internal/infrastructure/api/nbp_api_integration_test.go
package api

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/nbp-rate-service/internal/config"
	"github.com/damon-houk/nbp-rate-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNBPAPIIntegration(t *testing.T) {
	// This test makes actual API calls - skip in short mode and CI
	if testing.Short() {
		t.Skip("Skipping NBP API integration test in short mode")
	}

	client := NewNBPAPIClient(config.Default().NBP)
	ctx := context.Background()

	for _, table := range []entity.Table{entity.TableA, entity.TableB} {
		t.Run("table "+string(table), func(t *testing.T) {
			rates, err := client.FetchTable(ctx, table)
			require.NoError(t, err)
			assert.NotEmpty(t, rates)
			for _, r := range rates {
				assert.Len(t, r.Code, 3)
				assert.Greater(t, r.Rate, 0.0)
			}
		})
	}

	t.Run("series", func(t *testing.T) {
		end := civil.DateOf(time.Now()).AddDays(-30)
		start := end.AddDays(-14)

		points, err := client.FetchSeries(ctx, entity.TableA, "EUR", start, end)
		require.NoError(t, err)
		assert.NotEmpty(t, points)
	})
}
