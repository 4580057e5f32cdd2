package influxdb

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Reading is the subset of a stored reading that is mirrored.
type Reading struct {
	ID          int64
	DeviceID    int64
	Coordinates string
	Time        time.Time
}

// WriteReading writes r as a single point and waits for the server to
// accept it.
func (c *Client) WriteReading(ctx context.Context, r Reading) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.writeAPI.WritePoint(writeCtx, readingPoint(c.measurement, r)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// readingPoint builds the point for r, adding numeric lat/lon fields when
// the coordinates can be parsed.
func readingPoint(measurement string, r Reading) *write.Point {
	fields := map[string]any{
		"coordenadas": r.Coordinates,
		"registro_id": r.ID,
	}
	if lat, lon, ok := ParseLatLon(r.Coordinates); ok {
		fields["lat"] = lat
		fields["lon"] = lon
	}

	return write.NewPoint(
		measurement,
		map[string]string{"dispositivo_id": strconv.FormatInt(r.DeviceID, 10)},
		fields,
		r.Time,
	)
}

// ParseLatLon parses "lat,lon" in decimal degrees. It reports false when
// the string has another shape or a value is out of range.
func ParseLatLon(s string) (lat, lon float64, ok bool) {
	latStr, lonStr, found := strings.Cut(s, ",")
	if !found {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}
