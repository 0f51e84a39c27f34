package main

import "github.com/wormhole-demo/token-bridge-relayer/cmd"

func main() {
	cmd.Execute()
}
