package mqtt

import "fmt"

// Topic prefixes for the powerline MQTT surface.
//
// All topics use the flat scheme: powerline/{category}/{address_or_id}
const (
	// TopicPrefix is the base for all powerline topics.
	TopicPrefix = "powerline"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "powerline/system"
)

// Topics provides builders for powerline MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.State("A5")
//	// Returns: "powerline/state/A5"
type Topics struct{}

// Command returns the topic on which bus clients send commands for an
// address.
//
// Example: powerline/command/A5
func (Topics) Command(address string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefix, address)
}

// State returns the topic for device state updates.
//
// Example: powerline/state/A5
func (Topics) State(address string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, address)
}

// Ack returns the topic for command acknowledgements.
//
// Example: powerline/ack/A5
func (Topics) Ack(address string) string {
	return fmt.Sprintf("%s/ack/%s", TopicPrefix, address)
}

// Trigger returns the topic for whole-house broadcast triggers.
//
// Example: powerline/trigger/B-allLightsOff
func (Topics) Trigger(label string) string {
	return fmt.Sprintf("%s/trigger/%s", TopicPrefix, label)
}

// SystemStatus returns the daemon status topic, also used for the LWT.
//
// Example: powerline/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllCommands returns a pattern matching every command topic.
//
// Pattern: powerline/command/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+", TopicPrefix)
}

// AllStates returns a pattern matching every state topic.
//
// Pattern: powerline/state/+
func (Topics) AllStates() string {
	return fmt.Sprintf("%s/state/+", TopicPrefix)
}

// AllTriggers returns a pattern matching every trigger topic.
//
// Pattern: powerline/trigger/+
func (Topics) AllTriggers() string {
	return fmt.Sprintf("%s/trigger/+", TopicPrefix)
}

// AllTopics returns a pattern matching all powerline topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: powerline/#
func (Topics) AllTopics() string {
	return "powerline/#"
}
