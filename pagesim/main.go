// Command pagesim replays memory-access traces against a simulated physical
// memory and reports page faults and write-backs.
package main

import "github.com/sarchlab/pagesim/pagesim/cmd"

func main() {
	cmd.Execute()
}
