// Command arbiterctl is the operator CLI for the Argumentation Core:
// run the server, evaluate one evidence bundle, inspect a domain's
// recorded reputation at a past instant, and read memory store stats.
package main

func main() {
	Execute()
}
