package main

import "github.com/nvr-ai/go-sigverify/cmd"

func main() {
	cmd.Execute()
}
