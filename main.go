// The main package for the maintsync executable.
package main

import (
	"github.com/tpbkitchens/maintsync/cmd"
)

// main defers all execution to the Cobra CLI layer.
func main() {
	cmd.Execute()
}
