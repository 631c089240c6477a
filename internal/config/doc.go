// Package config loads pushpanel's configuration.
//
// # Overview
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, by default ~/.config/pushpanel/config.toml
//  3. PUSHPANEL_* environment variables, optionally seeded from a .env file
//     by LoadDotenv
//
// A missing config file is not an error. Blank values fall back to the
// defaults after trimming, and paths starting with ~ are expanded.
//
// # Default Values
//
//   - Notification server: http://127.0.0.1:3000
//   - Page URL: the server URL
//   - Worker script: ./sw.js (resolved against the page URL)
//   - Push service: https://push.localhost/send
//   - Browser profile: ~/.local/share/pushpanel/profile.toml
//   - Log file: ~/.local/share/pushpanel/pushpanel.log
//   - Theme: Nightfox
//   - Name and message inputs: enabled
//
// # TOML Format
//
//	server_url = "http://127.0.0.1:3000"
//	worker_script = "./sw.js"
//	push_service = "https://push.localhost/send"
//	state_path = "~/.local/share/pushpanel/profile.toml"
//	log_file = "~/.local/share/pushpanel/pushpanel.log"
//	theme = "Kanagawa"
//	debug = false
//
//	[features]
//	name_input = true
//	message_input = false
//
// log_file = "-" turns logging off; the activity list is then empty.
// A server_url without a scheme gets http://. Boolean environment variables
// accept anything strconv.ParseBool does; an unparseable value is an error.
package config
