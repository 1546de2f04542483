// Command learnlab runs active automata learning experiments and
// benchmarks.
package main

func main() {
	Execute()
}
