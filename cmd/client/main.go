package main

import "cipherkeeper/cmd/client/cmd"

func main() {
	cmd.Execute()
}
