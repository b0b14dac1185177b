package main

import "github.com/hambosto/seclume/cmd"

func main() {
	cmd.Execute()
}
