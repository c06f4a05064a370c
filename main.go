package main

import "github.com/ItzWarty/liblolskins/cmd"

func main() {
	cmd.Execute()
}
