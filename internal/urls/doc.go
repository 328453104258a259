// Package urls holds the documentation links printed by the command line
// tools, so they can be updated in one place before a release.
//
//	fmt.Printf("For more information, see: %s\n", urls.Troubleshooting)
package urls
