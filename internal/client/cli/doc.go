// Package cli provides the interactive gophgram command-line client.
//
// After login the client keeps a realtime connection open and folds every
// pushed frame into a state.Store: the online-user set is replaced on each
// presence snapshot and notifications accumulate until logout. Commands
// read that state or call the REST API.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
