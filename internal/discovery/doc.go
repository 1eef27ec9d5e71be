// Package discovery locates Simarine Pico devices on the local network.
//
// The Pico broadcasts its sensor state over UDP port 43210 about once a
// second, stamping every datagram with its system serial number. Discovery
// is therefore passive: bind the broadcast port, wait for the first valid
// datagram, and the sender's address is the device.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Binds the UDP broadcast port on all interfaces
//  2. Waits for a datagram that decodes as a valid protocol message
//  3. Records the sender's IP and the serial from the message envelope
//  4. Optionally probes the device over TCP for its firmware version
//
// # Usage Example
//
//	// Wait up to 10 seconds for a broadcast
//	scanner := discovery.NewScanner()
//	dev, err := scanner.Discover(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Found: %s\n", dev)
//
//	// Fill in the firmware version
//	if err := scanner.Probe(context.Background(), dev); err != nil {
//	    log.Fatal(err)
//	}
//
// # Network Requirements
//
// - The device and the host must be on the same broadcast domain
// - Firewall must allow inbound UDP on port 43210
// - Only one process can bind the broadcast port at a time
package discovery
