// Package commands defines the fitbuddy CLI, a terminal client for a running
// FitBuddy server.
//
// Commands
//
//   - login, logout, whoami   Manage the signed-in user
//   - today, week             Show the scheduled workout
//   - exercises               Browse the exercise catalog
//   - survey                  Submit the onboarding survey
//   - session                 Show and edit the workout being logged
//   - heatmap                 Month calendar of completed workouts
//   - history, progress       Query the history mirror
//
// # Implementation
//
// The root command builds one REST client from --server and --api-key (or
// FITBUDDY_URL and FITBUDDY_AUTH_API_KEY) before any subcommand runs. All
// state lives on the server; the CLI only renders responses.
package commands
