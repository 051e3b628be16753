package main

import "github.com/nfrund/rollcall/cmd/rollcall-cli/cmd"

func main() {
	cmd.Execute()
}
