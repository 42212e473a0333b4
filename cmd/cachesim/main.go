// Command cachesim replays memory-access traces through a cache model
// and reports hit/miss statistics.
package main

import "github.com/sarchlab/cachesim/cmd/cachesim/cmd"

func main() {
	cmd.Execute()
}
