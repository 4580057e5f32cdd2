// Package influxdb mirrors stored readings into InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Each reading
// becomes one point:
//
//	registros,dispositivo_id=3 coordenadas="40.4168,-3.7038",lat=40.4168,lon=-3.7038,registro_id=12i <fecha>
//
// The lat and lon fields are only present when the coordinate string
// parses as "lat,lon" within range. SQLite stays the system of record;
// the mirror exists for dashboards and range queries.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.WriteReading(ctx, influxdb.Reading{ID: 12, DeviceID: 3, Coordinates: "40.4,-3.7", Time: t})
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are blocking so the
// caller sees failures directly.
package influxdb
