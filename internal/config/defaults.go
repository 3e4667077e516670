// ABOUTME: Centralized configuration defaults for feednotes
// ABOUTME: Contains magic numbers and hardcoded values for display, network and vault layout

package config

import "time"

// HTTP settings
const (
	DefaultHTTPTimeout = 30 * time.Second
	DefaultConcurrency = 4
)

// Display settings
const (
	DefaultListLimit = 20
	SeparatorWidth   = 60
	DateFormatShort  = "02 Jan 06 15:04 MST"
	DateFormatLong   = "Mon, 02 Jan 2006 15:04 MST"
)

// Vault settings
const (
	DefaultVaultDir    = "~/Feednotes"
	DefaultFeedsFolder = "Feeds"
	DefaultTagPrefix   = "rss"
	DefaultTagMapName  = "tagmap.md"
	DefaultItemLimit   = 100
	DefaultDirPerms    = 0755
)
