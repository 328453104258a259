// Package server implements the bridge's HTTP surface.
//
// The bridge serves one of two route sets depending on its lifecycle mode.
// In access point mode the configuration portal is served:
//
//	GET  /scan        "<ssid>$<ssid>$..."
//	POST /wificonfig  "<hostname>$<ssid>$<password>$"  -> "Got request"
//
// Once joined to a network the control endpoints replace it:
//
//	GET  /                capture one IR signal -> "<proto>;<count>:<d1>,...," or "-1"
//	POST /                replay "<count>:<d1>,<d2>,..."  -> "Success" / "Invalid format"
//	POST /ac              send an 18 field A/C command     -> "Success" / "Invalid format"
//	GET  /scan            as above
//	GET  /capture/stream  websocket, one text message per capture window
//
// Every reply is plain text with status 200. Codec and capture failures
// never surface as error statuses; the only exceptions are a body read that
// exceeds the read deadline (408) and an empty body (400), both of which
// close the connection.
//
// # Request bodies
//
// Bodies are read into a fixed buffer of Config.MaxBody bytes (1500 by
// default). What happens to a longer body depends on Config.OversizePolicy:
//
//   - PolicyTruncate keeps the first MaxBody bytes, logs a warning and marks
//     the response with "X-Body-Truncated: true"
//   - PolicyReject answers "Invalid format" without touching the hardware
//
// # Usage
//
//	srv := server.New(server.DefaultConfig(), server.Deps{
//	    Configurator: machine,
//	    Receiver:     transceiver,
//	    Transmitter:  transceiver,
//	    WiFiLED:      wifiLED,
//	    IRLED:        irLED,
//	})
//	machine.Boot(ctx, srv) // calls StartPortal or StartControl
//	...
//	srv.Shutdown(ctx)
//
// Captures are serialised: the bridge has a single receiver, so concurrent
// GET / requests and stream subscribers take turns.
package server
