// Package client provides a high-level session against one Simarine
// Pico device.
//
// A Client wraps a request/response transport (TCP on the local network
// or MQTT through the vendor cloud bridge) and exposes the device's
// object model: system information, the device inventory, the sensor
// inventory and live sensor state.
//
// # Usage Example
//
//	c, err := client.Connect("192.168.1.50", 0, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	info, err := c.SystemInfo(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Pico %d firmware %s\n", info.Serial, info.Firmware())
//
// # Concurrency
//
// A Client is not safe for concurrent use: the wire protocol has no
// correlation id, so only one request can be in flight per session. Use
// one Client per goroutine, or serialize calls externally.
package client
