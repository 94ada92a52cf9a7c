// Command kin is the CLI entry point for the kin family tree manager.
package main

func main() {
	Execute()
}
