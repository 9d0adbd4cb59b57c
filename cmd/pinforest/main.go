package main

import "github.com/i5heu/pinforest/cmd/pinforest/cmd"

func main() {
	cmd.Execute()
}
