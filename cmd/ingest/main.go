package main

import "github.com/punchamoorthee/momoledger/cmd/ingest/cmd"

func main() {
	cmd.Execute()
}
