package main

import "xp-ledger/cmd/ledgerctl/root"

func main() {
	root.Execute()
}
