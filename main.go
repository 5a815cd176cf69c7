// The main package for the collector executable.
package main

import (
	"github.com/jaeha-dev/music-metrics-crawler/cmd"
)

func main() {
	cmd.Execute()
}
