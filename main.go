package main

import "github.com/xvierd/gitstate/cmd"

func main() {
	cmd.Execute()
}
