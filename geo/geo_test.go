package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	helsinki  = Point{Lat: 60.1699, Lon: 24.9384}
	tallinn   = Point{Lat: 59.4370, Lon: 24.7536}
	nullIsle  = Point{Lat: 0, Lon: 0}
	antipodal = Point{Lat: 0, Lon: 180}
)

func TestDistance(t *testing.T) {
	// Helsinki-Tallinn is about 82 km across the gulf.
	d := Distance(helsinki, tallinn)
	assert.InDelta(t, 82, d, 2)

	assert.Zero(t, Distance(helsinki, helsinki))

	// Half the Earth's circumference, pi*R.
	d = Distance(nullIsle, antipodal)
	assert.InDelta(t, 20015, d, 5)
}

func TestDistanceSymmetric(t *testing.T) {
	assert.InDelta(t, Distance(helsinki, tallinn), Distance(tallinn, helsinki), 1e-9)
}

func TestWithinRadius(t *testing.T) {
	assert.True(t, WithinRadius(helsinki, tallinn, 100))
	assert.False(t, WithinRadius(helsinki, tallinn, 50))
	assert.True(t, WithinRadius(helsinki, helsinki, 0))

	// ~111 m apart, one millidegree of latitude.
	near := Point{Lat: helsinki.Lat + 0.001, Lon: helsinki.Lon}
	assert.True(t, WithinRadius(helsinki, near, 0.2))
	assert.False(t, WithinRadius(helsinki, near, 0.1))
}
