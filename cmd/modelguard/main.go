package main

import "github.com/mvp-joe/modelguard/internal/cli"

func main() {
	cli.Execute()
}
