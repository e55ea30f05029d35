package main

import "github.com/molle-app/ms-go-reconcile/cmd"

func main() {
	cmd.Execute()
}
