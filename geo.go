package ltem

import (
	"fmt"
	"strings"

	"github.com/edgewire/ltem/at"
)

// GeoMode selects how geofence boundary crossings are reported.
type GeoMode int

const (
	// GeoModeNoURC disables event reporting; position is polled with
	// GeoQuery. This is the only mode currently supported.
	GeoModeNoURC GeoMode = 0
)

// GeoShape selects the geofence geometry and with it how many of the
// coordinate arguments are meaningful.
type GeoShape int

const (
	// GeoShapeCircleRadius is a circle given as center plus radius.
	GeoShapeCircleRadius GeoShape = 0
	// GeoShapeCirclePoint is a circle given as center plus a point on it.
	GeoShapeCirclePoint GeoShape = 1
	// GeoShapeTriangle is three vertices.
	GeoShapeTriangle GeoShape = 2
	// GeoShapeQuadrangle is four vertices.
	GeoShapeQuadrangle GeoShape = 3
)

// GeoPosition is the relation of the current fix to a geofence.
type GeoPosition int

const (
	GeoPositionUnknown GeoPosition = 0
	GeoPositionInside  GeoPosition = 1
	GeoPositionOutside GeoPosition = 2
)

// GeoAdd creates a geofence for future position evaluations. Coordinate
// arguments beyond what the shape uses must be zero.
func (d *Driver) GeoAdd(geoID uint8, mode GeoMode, shape GeoShape,
	lat1, lon1, lat2, lon2, lat3, lon3, lat4, lon4 float64) at.Result {

	if mode != GeoModeNoURC {
		return at.ResultBadRequest
	}
	switch {
	case shape == GeoShapeCircleRadius && anyNonZero(lon2, lat3, lon3, lat4, lon4),
		shape == GeoShapeCirclePoint && anyNonZero(lat3, lon3, lat4, lon4),
		shape == GeoShapeTriangle && anyNonZero(lat4, lon4):
		return at.ResultBadRequest
	}

	cmd := fmt.Sprintf(`AT+QCFGEXT="addgeo",%d,0,%d,%4.6f,%4.6f,%4.6f`,
		geoID, shape, lat1, lon1, lat2)
	if shape >= GeoShapeCirclePoint {
		cmd += fmt.Sprintf(",%4.6f", lon2)
	}
	if shape >= GeoShapeTriangle {
		cmd += fmt.Sprintf(",%4.6f,%4.6f", lat3, lon3)
	}
	if shape == GeoShapeQuadrangle {
		cmd += fmt.Sprintf(",%4.6f,%4.6f", lat4, lon4)
	}

	if !d.TryInvoke(cmd, true) {
		return at.ResultConflict
	}
	var resp [120]byte
	return d.AwaitResult(resp[:], 0, nil, true)
}

// GeoDelete removes a geofence.
func (d *Driver) GeoDelete(geoID uint8) at.Result {
	if !d.TryInvoke(fmt.Sprintf(`AT+QCFGEXT="deletegeo",%d`, geoID), true) {
		return at.ResultConflict
	}
	var resp [120]byte
	return d.AwaitResult(resp[:], 0, nil, true)
}

// GeoQuery evaluates the current position against a geofence.
func (d *Driver) GeoQuery(geoID uint8) (GeoPosition, at.Result) {
	if !d.TryInvoke(fmt.Sprintf(`AT+QCFGEXT="querygeo",%d`, geoID), true) {
		return GeoPositionUnknown, at.ResultConflict
	}

	var resp [120]byte
	res := d.AwaitResult(resp[:], 0, geoQueryParser, true)
	if res != at.ResultSuccess {
		return GeoPositionUnknown, res
	}
	return parseGeoPosition(string(resp[:])), res
}

// geoQueryParser anchors completion on the query reply landmark.
func geoQueryParser(response string) at.Result {
	return at.GapParser(response, `+QCFGEXT: "querygeo",`, true, 1, "")
}

// parseGeoPosition extracts the position field from a query reply,
// `+QCFGEXT: "querygeo",<geoId>,<position>`.
func parseGeoPosition(resp string) GeoPosition {
	landmark := `+QCFGEXT: "querygeo",`
	i := strings.Index(resp, landmark)
	if i < 0 {
		return GeoPositionUnknown
	}
	rest := resp[i+len(landmark):]
	// skip geoId to the position field
	for j := 0; j < len(rest); j++ {
		if rest[j] == ',' {
			if j+1 < len(rest) && rest[j+1] >= '0' && rest[j+1] <= '2' {
				return GeoPosition(rest[j+1] - '0')
			}
			break
		}
	}
	return GeoPositionUnknown
}

func anyNonZero(vals ...float64) bool {
	for _, v := range vals {
		if v != 0 {
			return true
		}
	}
	return false
}
