// Command fpmatch matches values against case tables written in YAML.
package main

import "github.com/npillmayer/fpmatch/cmd/fpmatch/commands"

func main() {
	commands.Execute()
}
