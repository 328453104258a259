package protocol

// Replies written by the bridge's HTTP handlers. Every reply is plain text
// with status 200; callers distinguish outcomes by body.
const (
	ReplySuccess       = "Success"
	ReplyInvalidFormat = "Invalid format"
	ReplyGotRequest    = "Got request"

	// ReplyNoSignal is sent in place of an encoded capture when the capture
	// window closes empty.
	ReplyNoSignal = "-1"
)
