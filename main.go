package main

import "github.com/raptorflow/raptorflow/cmd"

func main() {
	cmd.Execute()
}
