package locate

import (
	"context"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"georemind/geo"
)

func TestLastReport(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake()
	l := NewLastReport(5*time.Minute, clk)

	_, err := l.Current(ctx)
	assert.True(t, errors.Is(err, ErrUnavailable))

	pt := geo.Point{Lat: 60.17, Lon: 24.94}
	l.Report(pt, clk.Now())

	got, err := l.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, pt, got)

	// Within the staleness window the report keeps serving.
	clk.Add(4 * time.Minute)
	_, err = l.Current(ctx)
	assert.NoError(t, err)

	// Past it, the position is gone.
	clk.Add(2 * time.Minute)
	_, err = l.Current(ctx)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestLastReportHonorsContext(t *testing.T) {
	clk := clock.NewFake()
	l := NewLastReport(5*time.Minute, clk)
	l.Report(geo.Point{}, clk.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Current(ctx)
	assert.Error(t, err)
}
