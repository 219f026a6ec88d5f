// Command gcstress exercises a gcarena-backed cons-list heap with a random
// workload and verifies that reclamation is exact.
package main

func main() {
	execute()
}
