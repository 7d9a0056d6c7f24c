package main

import "github.com/ultiledger/go-marketledger/cmd/marketcli/app"

func main() {
	app.Execute()
}
