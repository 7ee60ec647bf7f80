package main

import "github.com/gdgjkuat/techdigest/cmd"

func main() {
	cmd.Execute()
}
