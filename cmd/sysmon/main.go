// Package main is the entry point for the sysmon agent.
package main

import (
	"sysmon-agent/cmd/sysmon/cmd"
)

func main() {
	cmd.Execute()
}
