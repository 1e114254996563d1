package main

import "github.com/notargets/gompdata/cmd"

func main() {
	cmd.Execute()
}
