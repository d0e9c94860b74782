package main

import "github.com/cerberussg/soundmatch/cmd"

func main() {
	cmd.Execute()
}
