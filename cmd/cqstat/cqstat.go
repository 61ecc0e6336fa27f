package main

import "CondorFrontEnd/internal/cqstat"

func main() {
	cqstat.ParseCmdArgs()
}
