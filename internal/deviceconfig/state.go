package deviceconfig

import "fmt"

// State is the position of the bridge in the configuration lifecycle.
type State int32

const (
	Unconfigured State = iota
	APMode
	Connecting
	Connected
	ConnectFailed
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case APMode:
		return "ap_mode"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case ConnectFailed:
		return "connect_failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
