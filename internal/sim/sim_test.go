package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rooftopshade/internal/config"
	"rooftopshade/internal/sunpos"
)

func TestBuildDefaultWorld(t *testing.T) {
	cfg := config.Default()
	w, err := Build(cfg, "current", zap.NewNop())
	require.NoError(t, err)

	// 2 rows × 3 columns × 72 cells.
	require.Len(t, w.Plans, 1)
	require.Len(t, w.Plans[0].Panels, 6)
	require.Len(t, w.Engine.Cells(), 6*72)

	// The assembled world samples end to end: a summer noon is daylight
	// and every intensity stays in range.
	sun := w.Location.Sun(sunpos.Moment{Year: 2024, Month: time.June, Day: 21, Hour: 13})
	require.True(t, sun.Up)
	for _, v := range w.Engine.SampleAll(sun) {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestBuildUnknownLayout(t *testing.T) {
	_, err := Build(config.Default(), "ghost", zap.NewNop())
	require.Error(t, err)
}
