// Package admin provides the operator command-line tool.
//
// It provisions what the authority does not create on its own: resource
// owners, third-party clients and data schemas. It can also apply database
// migrations. Commands are given as arguments:
//
//	user add [username]
//	client add <name> <redirect-uri> [description]
//	schema add <id> <version>
//	migrate
//
// With no arguments an interactive prompt is started. See App.Execute and
// App.Root.
package admin
