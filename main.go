package main

import "github.com/samsaffron/imgedit/cmd"

func main() {
	cmd.Execute()
}
