package main

import "code-intelligence.com/runtimedeps/internal/cmd/root"

func main() {
	root.Execute()
}
