package main

import "github.com/theirongolddev/fxtrip/cmd"

func main() {
	cmd.Execute()
}
