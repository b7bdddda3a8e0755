/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/corefellowship/backend/cmd"

func main() {
	cmd.Execute()
}
