// Package main hosts the tickteer CLI entrypoint and command graph.
//
// Without flags the root command lists ready tickets by priority. With
// --daemon it polls the ticket source and runs the configured command for the
// most urgent ticket each cycle. The lock, history and config subcommands are
// operator utilities around the same configuration.
package main
