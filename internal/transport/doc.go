// Package transport moves protocol messages between the client and a
// Simarine Pico device.
//
// Three transports share the codec in internal/protocol:
//
//   - TCP: the control channel on port 5001. Strictly one request in
//     flight; the device answers each request with exactly one message.
//   - UDP: the broadcast channel on port 43210. Listen-only; the device
//     periodically broadcasts sensor state and pressure history, and the
//     first valid datagram reveals the device's address for discovery.
//   - MQTT: the vendor cloud bridge. The device mirrors the TCP
//     request/response exchange over per-serial topics, which allows
//     reaching a Pico that is not on the local network.
//
// Each transport owns its socket exclusively and is not safe for use by
// multiple goroutines at once. Close is safe on every exit path and
// idempotent.
package transport
