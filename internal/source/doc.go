// Package source fetches ready tickets from the external tracker CLI.
package source
