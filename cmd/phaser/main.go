package main

import "github.com/anggasct/phaser/cmd/phaser/cmd"

func main() {
	cmd.Execute()
}
