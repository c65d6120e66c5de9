// Package meter reads measurement frames from a UNI-T UT325F thermometer.
package meter

// The UT325F streams fixed 56-byte frames over a serial line at 115200
// baud, 8-N-1, no flow control. Each frame starts with a 5-byte sync
// marker followed by four current channel temperatures, per-channel
// sensor-error flags, four held temperatures (the statistic selected by
// the front-panel hold mode), the instrument's internal temperature and
// a trailer of unidentified bytes. All multi-byte fields are
// little-endian.
//
// The stream gives no alignment guarantee: a reader may attach
// mid-frame, and the device keeps transmitting whether or not anyone
// listens, so stale bytes are normal right after the port opens.
// Session owns the port and absorbs that initial garbage, Meter
// recovers frame boundaries by scanning for the sync marker under a
// deadline, and ParseFrame decodes one complete frame.
