// Package main is the entry point for radar-schemas, the command line tool
// that resolves and validates the RADAR-base schema catalogue.
package main

func main() {
	Execute()
}
