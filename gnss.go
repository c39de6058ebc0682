package ltem

import (
	"strconv"
	"strings"

	"github.com/edgewire/ltem/at"
)

// GNSSLocation is one position fix as reported by the receiver.
type GNSSLocation struct {
	UTC      string
	Lat      float64
	LatDir   byte // 'N' or 'S'
	Lon      float64
	LonDir   byte // 'E' or 'W'
	HDOP     float64
	Altitude float64
	FixType  int
	Course   float64
	SpeedKm  float64
	SpeedKn  float64
	Date     string
	NSat     int
}

// GNSSOn powers up the positioning receiver.
func (d *Driver) GNSSOn() at.Result {
	if !d.TryInvoke("AT+QGPS=1", true) {
		return at.ResultConflict
	}
	var resp [120]byte
	return d.AwaitResult(resp[:], 0, nil, true)
}

// GNSSOff powers down the positioning receiver.
func (d *Driver) GNSSOff() at.Result {
	if !d.TryInvoke("AT+QGPSEND", true) {
		return at.ResultConflict
	}
	var resp [120]byte
	return d.AwaitResult(resp[:], 0, nil, true)
}

// GNSSGetLocation reads the current fix. Until the receiver has one the
// device answers with a CME error, which comes back verbatim in the
// result code.
func (d *Driver) GNSSGetLocation() (GNSSLocation, at.Result) {
	if !d.TryInvoke("AT+QGPSLOC=2", true) {
		return GNSSLocation{}, at.ResultConflict
	}

	var resp [200]byte
	res := d.AwaitResult(resp[:], 0, gnssLocParser, true)
	if res != at.ResultSuccess {
		return GNSSLocation{}, res
	}

	loc, ok := parseGNSSLocation(string(resp[:]))
	if !ok {
		return GNSSLocation{}, at.ResultError
	}
	return loc, res
}

// gnssLocParser completes once all eleven fields of the fix line arrived.
func gnssLocParser(response string) at.Result {
	return at.TokenCountParser(response, "+QGPSLOC: ", ',', 11)
}

// parseGNSSLocation decodes
// `+QGPSLOC: <utc>,<lat>,<lon>,<hdop>,<alt>,<fix>,<cog>,<spkm>,<spkn>,<date>,<nsat>`
// with lat/lon in ddmm.mmmmN form.
func parseGNSSLocation(resp string) (GNSSLocation, bool) {
	const landmark = "+QGPSLOC: "
	i := strings.Index(resp, landmark)
	if i < 0 {
		return GNSSLocation{}, false
	}
	line := resp[i+len(landmark):]
	if eol := strings.IndexByte(line, '\r'); eol >= 0 {
		line = line[:eol]
	}
	fields := strings.Split(line, ",")
	if len(fields) < 11 {
		return GNSSLocation{}, false
	}

	var loc GNSSLocation
	var ok bool
	loc.UTC = fields[0]
	if loc.Lat, loc.LatDir, ok = parseCoordinate(fields[1]); !ok {
		return GNSSLocation{}, false
	}
	if loc.Lon, loc.LonDir, ok = parseCoordinate(fields[2]); !ok {
		return GNSSLocation{}, false
	}
	loc.HDOP, _ = strconv.ParseFloat(fields[3], 64)
	loc.Altitude, _ = strconv.ParseFloat(fields[4], 64)
	loc.FixType, _ = strconv.Atoi(fields[5])
	loc.Course, _ = strconv.ParseFloat(fields[6], 64)
	loc.SpeedKm, _ = strconv.ParseFloat(fields[7], 64)
	loc.SpeedKn, _ = strconv.ParseFloat(fields[8], 64)
	loc.Date = fields[9]
	loc.NSat, _ = strconv.Atoi(strings.TrimRight(fields[10], "\x00 "))
	return loc, true
}

// parseCoordinate converts ddmm.mmmmD (D a compass letter) to signed
// decimal degrees. South and west are negative.
func parseCoordinate(field string) (float64, byte, bool) {
	if len(field) < 2 {
		return 0, 0, false
	}
	dir := field[len(field)-1]
	raw, err := strconv.ParseFloat(field[:len(field)-1], 64)
	if err != nil {
		return 0, 0, false
	}
	deg := float64(int(raw / 100))
	min := raw - deg*100
	val := deg + min/60
	if dir == 'S' || dir == 'W' {
		val = -val
	}
	return val, dir, true
}
