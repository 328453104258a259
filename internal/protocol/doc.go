// Package protocol implements the text wire formats spoken by the IR bridge.
//
// Two codecs live here, both pure and free of I/O:
//
// # Raw signals
//
// A captured infrared signal is a list of alternating mark/space durations in
// microseconds, optionally tagged with the protocol id the receiver recognised.
// On the wire it looks like:
//
//	<protocol_id>;<pulse_count>:<d1>,<d2>,...,<dn>,
//
// with -1 standing for an unrecognised protocol. Durations that do not fit in
// 16 bits are split into 65535 chunks separated by zero-length padding tokens
// so that a 16-bit replay buffer can still carry them.
//
// The replay direction accepts "<pulse_count>:<d1>,<d2>,..." with the
// protocol prefix optional:
//
//	sig, err := protocol.DecodeRaw("10:8954,4180,540,1584,514,534,512,536,514,536")
//	if errors.Is(err, protocol.ErrFormat) {
//	    // reply "Invalid format"
//	}
//
// # Air conditioner commands
//
// A structured A/C state is 18 comma separated fields in a fixed order:
//
//	protocol,model,power,mode,degrees,celsius,fan,swingv,swingh,
//	quiet,turbo,econo,light,filter,clean,beep,sleep,clock
//
// Booleans travel as integers where anything greater than zero is true.
// Decoding is deliberately lenient after the first field: unparsable numbers
// become zero, the same way the firmware's atoi/atof based parser behaves.
package protocol
