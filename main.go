package main

import "github.com/nextlevelbuilder/goclaw-whatsapp/cmd"

func main() {
	cmd.Execute()
}
