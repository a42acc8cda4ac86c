package main

import "github.com/julian-george/dali-datascience-app/cmd"

func main() {
	cmd.Execute()
}
