// Bandwidth is a point-to-point bandwidth benchmark.
package main

import "github.com/sarchlab/bandwidth/bandwidth/cmd"

func main() {
	cmd.Execute()
}
