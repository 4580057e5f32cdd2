// Package reading stores GPS position reports.
//
// A reading records when a device reported (fecha), the raw coordinate
// string it sent (coordenadas) and the reporting device. Readings are
// append-only; they disappear only when their device is deleted.
package reading
