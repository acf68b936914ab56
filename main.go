package main

import (
	"fmt"
	"os"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
