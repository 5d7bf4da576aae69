package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAddress(t *testing.T) {
	city, district := splitAddress("c1:b2:r3:p4:n1:a7")
	assert.Equal(t, "c1", city)
	assert.Equal(t, "c1:b2", district)

	city, district = splitAddress("solo")
	assert.Equal(t, "desconhecido", city)
	assert.Equal(t, "desconhecido", district)

	city, district = splitAddress(":b2:r3")
	assert.Equal(t, "desconhecido", city)
	assert.Equal(t, "desconhecido", district)
}

func TestBuildStats(t *testing.T) {
	addresses := []string{
		"c1:b1:r1:p1:n1:a1",
		"c1:b1:r2:p1:n1:a1",
		"c1:b2:r1:p1:n1:a1",
		"c2:b1:r1:p1:n1:a1",
	}

	stats := buildStats("wh-1", addresses)

	assert.Equal(t, "wh-1", stats.WarehouseID)
	assert.Equal(t, 4, stats.Total)

	assert.Equal(t, 3, stats.ByCity["c1"].Count)
	assert.InDelta(t, 75.0, stats.ByCity["c1"].Percentage, 0.001)
	assert.Equal(t, 1, stats.ByCity["c2"].Count)
	assert.InDelta(t, 25.0, stats.ByCity["c2"].Percentage, 0.001)

	assert.Equal(t, 2, stats.ByDistrict["c1:b1"].Count)
	assert.InDelta(t, 50.0, stats.ByDistrict["c1:b1"].Percentage, 0.001)
}

func TestBuildStatsEmpty(t *testing.T) {
	stats := buildStats("wh-1", nil)

	assert.Equal(t, 0, stats.Total)
	assert.Empty(t, stats.ByCity)
	assert.Empty(t, stats.ByDistrict)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, percentage(3, 0))
	assert.Equal(t, 50.0, percentage(1, 2))
	assert.Equal(t, 100.0, percentage(5, 5))
}
