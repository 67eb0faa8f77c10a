// Command fitgrow is a terminal client for the FitGrow API.
package main

import (
	"fmt"
	"os"
)

func main() {
	a := &app{}
	err := a.rootCmd().Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
