package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteStateChange records one device state change in the device_state
// measurement.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - address: Device address in textual form (e.g. "A5")
//   - house: House letter (e.g. "A"), kept as a tag for per-house queries
//   - on: Power state after the change
//   - level: Brightness after the change (0-100)
//   - source: Origin of the change (powerline, mqtt)
//
// Example:
//
//	client.WriteStateChange("A5", "A", true, 75, "powerline")
func (c *Client) WriteStateChange(address, house string, on bool, level int, source string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"address": address,
			"house":   house,
			"source":  source,
		},
		map[string]interface{}{
			"on":    on,
			"level": level,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteTrigger records a whole-house broadcast in the trigger
// measurement.
//
// Parameters:
//   - label: Composed identifier (e.g. "B-allLightsOff")
//   - house: House letter
//   - command: Broadcast command name
//   - source: Origin of the broadcast
func (c *Client) WriteTrigger(label, house, command, source string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"trigger",
		map[string]string{
			"label":   label,
			"house":   house,
			"command": command,
			"source":  source,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
