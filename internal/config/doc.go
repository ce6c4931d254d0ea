// Package config loads userboard settings.
//
// Sources are layered, later ones winning:
//
//  1. built-in defaults
//  2. userboard.yaml in the working directory, or the file given by --config
//  3. USERBOARD_* environment variables (USERBOARD_BASE_URL sets base_url)
//  4. command-line flags that were set explicitly (--base-url sets base_url)
//
// # Configuration File Structure
//
//	base_url: http://localhost:8080
//	timeout: 10s
//	retries: 3
//	retry_initial: 100ms
//	simulate: false
//	simulate_delay: 3s
//	tracing: true
//	log_level: info
//	log_format: text
//	listen: ":8080"
package config
