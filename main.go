package main

import "github.com/loomcli/loom/cmd"

func main() {
	cmd.Execute()
}
