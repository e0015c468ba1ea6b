package main

import "github.com/nfrund/intake/cmd/intake/cmd"

func main() {
	cmd.Execute()
}
