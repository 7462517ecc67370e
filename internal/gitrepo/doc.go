// Package gitrepo validates repository checkouts and runs version-control
// operations against them through execshell.
package gitrepo
