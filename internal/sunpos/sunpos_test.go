package sunpos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The reference site used across the tests: Culemborg, Netherlands.
func culemborg(t *testing.T) Location {
	t.Helper()
	loc, err := NewLocation(51.9553, 5.2256, "Europe/Amsterdam")
	require.NoError(t, err)
	return loc
}

// assertBetween reports whether x is in [a, b].
func assertBetween(t *testing.T, msg string, x, a, b float64) {
	t.Helper()
	if a <= x && x <= b {
		return
	}
	t.Errorf("got %s = %v, want in range [%v, %v]", msg, x, a, b)
}

func TestNewLocationValidation(t *testing.T) {
	var invErr *InvalidLocationError

	_, err := NewLocation(95, 0, "UTC")
	require.ErrorAs(t, err, &invErr)

	_, err = NewLocation(0, -200, "UTC")
	require.ErrorAs(t, err, &invErr)

	_, err = NewLocation(0, 0, "Mars/Olympus_Mons")
	require.ErrorAs(t, err, &invErr)

	_, err = NewLocation(52, 5, "Europe/Amsterdam")
	require.NoError(t, err)
}

func TestSunRanges(t *testing.T) {
	loc := culemborg(t)
	for month := time.January; month <= time.December; month++ {
		for hour := 0.0; hour < 24; hour += 1.5 {
			sun := loc.Sun(Moment{Year: 2024, Month: month, Day: 15, Hour: hour})
			if sun.Azimuth < 0 || sun.Azimuth >= 360 {
				t.Errorf("%v %v: azimuth %v outside [0, 360)", month, hour, sun.Azimuth)
			}
			if sun.Elevation < 0 {
				t.Errorf("%v %v: display elevation %v below 0", month, hour, sun.Elevation)
			}
			if sun.Up != (sun.Altitude > 0) {
				t.Errorf("%v %v: Up=%v inconsistent with altitude %v", month, hour, sun.Up, sun.Altitude)
			}
		}
	}
}

func TestCulemborgAfternoon(t *testing.T) {
	// 2024-08-11 at 16:54 local: the sun is up and in the western half of
	// the compass. A directional sanity check, not an exact-degree one.
	loc := culemborg(t)
	sun := loc.Sun(Moment{Year: 2024, Month: time.August, Day: 11, Hour: 16.9})
	require.True(t, sun.Up)
	require.Greater(t, sun.Elevation, 0.0)
	assertBetween(t, "azimuth", sun.Azimuth, 180, 360)
}

func TestInstantIsDSTAware(t *testing.T) {
	// The same wall-clock hour in winter (CET) and summer (CEST) maps to
	// UTC instants whose zone offsets differ by exactly one hour.
	loc := culemborg(t)
	winter := loc.Instant(Moment{Year: 2024, Month: time.January, Day: 15, Hour: 12})
	summer := loc.Instant(Moment{Year: 2024, Month: time.July, Day: 15, Hour: 12})

	_, winterOff := winter.Zone()
	_, summerOff := summer.Zone()
	require.Equal(t, 3600, summerOff-winterOff)

	// And both resolve the same wall clock.
	require.Equal(t, 12, winter.Hour())
	require.Equal(t, 12, summer.Hour())
}

func TestInstantFractionalHour(t *testing.T) {
	loc := culemborg(t)
	at := loc.Instant(Moment{Year: 2024, Month: time.August, Day: 11, Hour: 16.9})
	require.Equal(t, 16, at.Hour())
	require.Equal(t, 54, at.Minute())
}

func TestMomentValidate(t *testing.T) {
	require.NoError(t, Moment{Year: 2024, Month: 1, Day: 1, Hour: 0}.Validate())
	require.Error(t, Moment{Year: 2024, Month: 1, Day: 1, Hour: 24}.Validate())
	require.Error(t, Moment{Year: 2024, Month: 1, Day: 1, Hour: -0.5}.Validate())
}

func TestDirection(t *testing.T) {
	// Sun at the zenith points straight up regardless of azimuth.
	v := SunVector{Azimuth: 123, Altitude: 90, Elevation: 90, Up: true}
	d := v.Direction()
	require.InDelta(t, 1, d.Z, 1e-9)

	// Sun due east on the horizon points along +X.
	v = SunVector{Azimuth: 90, Altitude: 0, Elevation: 0}
	d = v.Direction()
	require.InDelta(t, 1, d.X, 1e-9)
	require.InDelta(t, 0, d.Y, 1e-9)
	require.InDelta(t, 0, d.Z, 1e-9)
}

func TestIrradiance(t *testing.T) {
	// These values are based on the tables at
	// https://www.ftexploring.com/solar-energy/air-mass-and-insolation2.htm
	mkVec := func(alt float64) SunVector {
		return SunVector{Altitude: alt}
	}
	assertBetween(t, "irradiance at 90°", mkVec(90).Irradiance(0, 1), 1041, 1042)
	assertBetween(t, "irradiance at 1°", mkVec(1).Irradiance(0, 1), 56, 57)
	assertBetween(t, "irradiance at 0°", mkVec(0).Irradiance(0, 1), 22.4, 22.5)

	// Below the horizon there is no flux at all.
	require.Zero(t, mkVec(-1).Irradiance(0, 1))

	// Fully shaded leaves only the diffuse component.
	full := mkVec(45).Irradiance(0, 1)
	shaded := mkVec(45).Irradiance(0, 0)
	require.InDelta(t, full/11, shaded, full*0.001)
}

func TestSunAtMatchesSun(t *testing.T) {
	loc := culemborg(t)
	m := Moment{Year: 2024, Month: time.June, Day: 1, Hour: 10.25}
	require.Equal(t, loc.Sun(m), loc.SunAt(loc.Instant(m)))
}
