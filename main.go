package main

import "github.com/meysamhadeli/codemd/cmd"

func main() {
	cmd.Execute()
}
