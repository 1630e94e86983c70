// This program performs administrative tasks for the anchoring ledger:
// inspecting, validating and querying a snapshot offline.
package main

import "github.com/medchain/medchain/app/tooling/admin/commands"

func main() {
	commands.Execute()
}
