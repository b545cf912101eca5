// Package sunpos computes the sun's position for a configured site at a
// simulated wall-clock moment.
//
// Azimuth convention: suncalc reports azimuth in radians with 0 pointing
// south (-90° east, 90° west). This package remaps once, here and nowhere
// else, by adding 180° and reducing mod 360, so that SunVector.Azimuth is a
// compass bearing: 0° is true north, 90° is east. Consumers must not
// re-derive this offset.
package sunpos

import (
	"fmt"
	"math"
	"time"
	_ "time/tzdata"

	"github.com/sixdouglas/suncalc"
	"gonum.org/v1/gonum/spatial/r3"
)

// SunDistance is how far out the point sun sits along its direction, in
// meters. At rooftop scene scale this makes sample rays parallel to well
// below the sampling thresholds.
const SunDistance = 100e3

// Location is a validated geographic site.
type Location struct {
	Latitude  float64 // degrees, north positive
	Longitude float64 // degrees, east positive
	Timezone  string  // IANA identifier, e.g. "Europe/Amsterdam"

	loc *time.Location
}

// InvalidLocationError reports a latitude/longitude outside physical range
// or an unknown timezone.
type InvalidLocationError struct {
	Latitude  float64
	Longitude float64
	Timezone  string
	Reason    string
}

func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("invalid location (%v, %v, %q): %s", e.Latitude, e.Longitude, e.Timezone, e.Reason)
}

// NewLocation validates and returns a Location. Latitude must be within
// ±90°, longitude within ±180°, and tz must name a loadable IANA zone.
func NewLocation(lat, lon float64, tz string) (Location, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Location{}, &InvalidLocationError{lat, lon, tz, "latitude outside ±90"}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Location{}, &InvalidLocationError{lat, lon, tz, "longitude outside ±180"}
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Location{}, &InvalidLocationError{lat, lon, tz, "unknown timezone"}
	}
	return Location{Latitude: lat, Longitude: lon, Timezone: tz, loc: loc}, nil
}

// Moment is a simulated calendar date plus a decimal hour of day in the
// site's local wall-clock time. Hour 16.9 is 16:54.
type Moment struct {
	Year  int
	Month time.Month
	Day   int
	Hour  float64 // [0, 24)
}

// Validate reports whether the moment's decimal hour is in range.
func (m Moment) Validate() error {
	if math.IsNaN(m.Hour) || m.Hour < 0 || m.Hour >= 24 {
		return fmt.Errorf("decimal hour %v outside [0, 24)", m.Hour)
	}
	return nil
}

// Instant resolves the moment to an absolute instant using the site's IANA
// timezone. The same wall-clock hour maps to different UTC instants across
// the year because time.Date applies the zone's DST rules.
func (l Location) Instant(m Moment) time.Time {
	secs := int(math.Round(m.Hour * 3600))
	return time.Date(m.Year, m.Month, m.Day, secs/3600, (secs/60)%60, secs%60, 0, l.loc)
}

// SunVector is the sun's direction in the site's horizontal coordinate
// system, in degrees.
type SunVector struct {
	// Azimuth is the compass bearing of the sun: 0 is true north, 90 is
	// east, always in [0, 360).
	Azimuth float64

	// Elevation is the display elevation, clamped to ≥0. Use Altitude for
	// the raw signed value.
	Elevation float64

	// Altitude is the raw signed altitude, -90 to 90, where 0 is the
	// horizon and 90 is directly overhead.
	Altitude float64

	// Up reports whether the sun is above the horizon (raw altitude > 0).
	Up bool
}

// Zone returns the loaded IANA timezone.
func (l Location) Zone() *time.Location {
	return l.loc
}

// Sun returns the sun position for the given moment. Pure: the result
// depends only on the moment and the receiver.
func (l Location) Sun(m Moment) SunVector {
	return l.SunAt(l.Instant(m))
}

// SunAt returns the sun position at an absolute instant.
func (l Location) SunAt(t time.Time) SunVector {
	p := suncalc.GetPosition(t, l.Latitude, l.Longitude)
	// suncalc returns angles in radians (even though it takes latitude
	// and longitude in degrees) and uses a south-zero azimuth; see the
	// package comment for the remap.
	const rad2deg = 180 / math.Pi
	alt := p.Altitude * rad2deg
	az := math.Mod(p.Azimuth*rad2deg+180, 360)
	if az < 0 {
		az += 360
	}
	return SunVector{
		Azimuth:   az,
		Elevation: math.Max(alt, 0),
		Altitude:  alt,
		Up:        alt > 0,
	}
}

// Direction returns the unit vector pointing from the origin toward the
// sun, using the raw altitude. X is east, Y is north, Z is up.
func (v SunVector) Direction() r3.Vec {
	const deg2rad = math.Pi / 180
	al := v.Altitude * deg2rad
	az := v.Azimuth * deg2rad
	return r3.Unit(r3.Vec{
		X: math.Sin(az) * math.Cos(al),
		Y: math.Cos(az) * math.Cos(al),
		Z: math.Sin(al),
	})
}

// WorldPosition models the sun as a point SunDistance meters out along its
// direction, so rays from anywhere in the scene toward it are effectively
// parallel.
func (v SunVector) WorldPosition() r3.Vec {
	return r3.Scale(SunDistance, v.Direction())
}

// Irradiance computes the total global radiation of the sun (aka solar
// flux, aka insolation) at this position on a plane perpendicular to the
// sun, in W/m². direct is the unshaded fraction of direct sunlight reaching
// the plane, between 0 and 1.
func (v SunVector) Irradiance(elevationFeet, direct float64) (wattsPerSquareMeter float64) {
	// This is based on https://www.pveducation.org/pvcdrom/properties-of-sunlight/air-mass
	if v.Altitude < 0 {
		return 0
	}

	// Compute air mass. This is a unitless number that is between 1 if
	// the sun is directly overhead (minimal air mass) and ~38 if the
	// sun is at the horizon. You'd think we would account for elevation
	// here, but we actually do that in the illumination model. The core
	// of this formula is simply the 1/cos(Θ); the rest of the terms
	// account for the curvature of the Earth.
	//
	// From Kasten, F. and Young, A. T., “Revised optical air mass
	// tables and approximation formula”, Applied Optics, vol. 28, pp.
	// 4735–4738, 1989.
	zenithAngle := 90 - v.Altitude // 0 is overhead
	airMass := 1 / (math.Cos(zenithAngle*(math.Pi/180)) + (0.50572 * math.Pow((96.07995-zenithAngle), -1.6364)))

	// Compute direct component of sunlight, accounting for elevation.
	// From Meinel, A. B. and Meinel, M. P., Applied Solar Energy.
	// Addison Wesley Publishing Co., 1976.
	h := elevationFeet * 0.0003048 // To kilometers
	a := 0.14
	iDirect := 1353 * ((1-a*h)*math.Pow(0.7, math.Pow(airMass, 0.678)) + a*h)

	// Diffuse radiation is ~10% of direct radiation.
	return (0.1 + direct) * iDirect
}
