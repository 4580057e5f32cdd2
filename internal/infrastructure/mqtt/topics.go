package mqtt

import "strings"

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "gpstracker"

// Entity names used in event topics.
const (
	EntityUsuario     = "usuarios"
	EntityDispositivo = "dispositivos"
	EntityRegistro    = "registros"
)

// Topics builds the tracker's MQTT topic names under a common prefix.
//
//	topics := mqtt.NewTopics("gpstracker")
//	topics.Event(mqtt.EntityRegistro) // "gpstracker/events/registros"
type Topics struct {
	prefix string
}

// NewTopics returns a builder for prefix. Surrounding slashes are dropped.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the normalised prefix.
func (t Topics) Prefix() string {
	return t.prefix
}

// Event returns the topic for events about one entity type.
//
// Example: gpstracker/events/dispositivos
func (t Topics) Event(entity string) string {
	return t.prefix + "/events/" + entity
}

// AllEvents returns a wildcard matching every event topic.
//
// Example: gpstracker/events/+
func (t Topics) AllEvents() string {
	return t.prefix + "/events/+"
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: gpstracker/system/status
func (t Topics) SystemStatus() string {
	return t.prefix + "/system/status"
}
