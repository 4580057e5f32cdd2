// Package mqtt publishes tracker events to an MQTT broker.
//
// When enabled, every user, device or reading created or deleted through
// the API is announced on {prefix}/events/{entity} as a JSON envelope.
// The client also keeps a retained status message on
// {prefix}/system/status, with a Last Will so subscribers see the
// tracker go offline if it dies.
//
// Publishing is best-effort: the API logs a failed publish and carries on.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishEvent(mqtt.EntityRegistro, mqtt.ActionCreated, reading)
package mqtt
