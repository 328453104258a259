// Package tui implements the interactive screens of irbridge-cfg.
//
// Two Bubble Tea programs live here:
//
//   - AppModel is the setup wizard. It talks to a bridge that is still in
//     access point mode: it lists the networks the bridge can see, collects
//     the password and hostname, submits them and then waits for the bridge
//     to announce itself over mDNS on the home network.
//   - DiscoveryModel scans the LAN for configured bridges and lets the user
//     pick one, or type an address by hand.
//
// Every screen renders through RenderApplicationContainer so header, body
// and key help sit in the same frame.
//
//	app := tui.NewAppModel(ctx, tui.Config{
//	    API:      bridgeclient.NewClient(bridgeclient.DefaultAPAddress, bridgeclient.DefaultPort),
//	    Finder:   discovery.NewScanner(),
//	    Hostname: "living-room",
//	})
//	final, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
//	bridge, creds, err := final.(tui.AppModel).Result()
package tui
