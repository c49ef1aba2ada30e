// This program performs administrative tasks against a stored quartz chain.
package main

import "github.com/quartzledger/quartz/app/tooling/quartz/cmd"

func main() {
	cmd.Execute()
}
