// Package device stores the GPS units registered to users.
//
// A device belongs to exactly one user. Creation checks the owner inside
// the same transaction as the insert, so a device is never stored against
// a missing user. Deleting a user removes its devices.
package device
