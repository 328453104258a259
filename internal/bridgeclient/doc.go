// Package bridgeclient talks to an IR bridge over its HTTP surface.
//
// The bridge answers in plain text, so this client is mostly about turning
// those short replies into typed results and errors:
//
//	client := bridgeclient.NewClient("192.168.1.50", 80)
//
//	sig, err := client.Capture(ctx)
//	if bridgeclient.IsNoSignal(err) {
//	    // nothing was pointed at the receiver within the capture window
//	}
//
//	if err := client.SendRaw(ctx, "4:8954,4180,540,1584"); err != nil {
//	    fmt.Println(bridgeclient.GetShortErrorMessage(err))
//	}
//
// While the bridge is in access point mode only Networks and Configure are
// served:
//
//	client := bridgeclient.NewClient(bridgeclient.DefaultAPAddress, 80)
//	ssids, _ := client.Networks(ctx)
//	err := client.Configure(ctx, credstore.Credentials{
//	    Hostname: "livingroom",
//	    SSID:     ssids[0],
//	    Password: "correct horse",
//	})
//
// Configure only confirms that the bridge accepted the request. The bridge
// then joins the network and restarts, so success is observed by finding it
// again with the discovery package.
//
// # Retries
//
// Read-only requests (Capture, Networks) are retried with exponential
// backoff on retryable errors. Requests that fire the transmitter or change
// configuration are sent once.
//
// # Errors
//
// Every failure is a *ClientError carrying an ErrorType, a retryable flag and
// the wrapped cause. GetTroubleshootingHint turns one into advice suitable for
// a terminal.
package bridgeclient
