package main

import "CondorFrontEnd/internal/cexec"

func main() {
	cexec.ParseCmdArgs()
}
