// Command allocctl composes allocator stacks from a textual description and
// runs synthetic workloads against them.
package main

func main() {
	execute()
}
