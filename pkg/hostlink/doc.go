// Package hostlink provides the host side link of the bridge: a bounded
// byte queue fed by the port reader, the framing protocol and the Link
// adapter which turns frames into telemetry messages.
//
// Frames are exchanged over a byte stream (USB CDC serial, or a socket
// while developing). Each frame carries exactly one telemetry message:
//
//	[len=16][seq][message: 11 bytes][crc16 hi][crc16 lo][0x7E]
//
// The CRC covers len, seq and the message. There is no acknowledgement
// or retransmission: a corrupted frame is dropped and the parser hunts
// for the next sync byte. The seq number lets the receiver drop a frame
// which was delivered twice.
package hostlink
