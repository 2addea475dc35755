/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/axlframe/cmd/axl/cmd"

func main() {
	cmd.Execute()
}
