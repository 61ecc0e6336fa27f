package main

import "CondorFrontEnd/internal/csubmit"

func main() {
	csubmit.ParseCmdArgs()
}
