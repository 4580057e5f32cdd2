package mqtt

import (
	"encoding/json"
	"fmt"
	"time"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// Event actions.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// Event is the JSON envelope published on event topics.
type Event struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func buildEventPayload(entity, action string, data any, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(Event{
		Entity:    entity,
		Action:    action,
		Data:      data,
		Timestamp: now.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding event: %w", ErrPublishFailed, err)
	}
	return payload, nil
}

// Publish sends payload to topic and waits for the broker acknowledgment
// (for QoS above 0) up to the publish timeout.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishEvent announces that an entity was created or deleted. Events
// are not retained.
func (c *Client) PublishEvent(entity, action string, data any) error {
	payload, err := buildEventPayload(entity, action, data, time.Now())
	if err != nil {
		return err
	}
	return c.Publish(c.topics.Event(entity), payload, c.qos(), false)
}
