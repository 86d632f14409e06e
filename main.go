/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/caseops/caseflow-gin/cmd"

func main() {
	cmd.Execute()
}
