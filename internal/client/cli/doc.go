// Package cli provides the interactive fleet admin console.
//
// The console is a REPL over the screens package: every menu section is a
// command ("navy-types", "users", ...) taking list/add/edit/delete
// sub-commands. All section commands pass the route guard (wait while the
// stored session is checked, log in when there is none) and the permission
// gate of the section and action.
//
// Key features:
//   - Login / Logout / whoami
//   - Paginated and searchable listing rendered as tables
//   - Add and edit forms with cascading selections
//   - Group permission assignment and password reset
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartProgressWatcher, and runREPL for details.
package cli
