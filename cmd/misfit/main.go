// Command misfit synthesizes signed Bitcoin-style transactions and blocks
// and breaks selected fields of existing ones for negative testing.
package main

func main() {
	Execute()
}
