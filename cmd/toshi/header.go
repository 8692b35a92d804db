package main

import "fmt"

const header = `
 ______          __    _    ____                      __
/_  __/__  ___  / /   (_)  / __/___ ___ _ ____ ____  / /
 / /  / _ \(_-</ _ \ / /  _\ \/ -_)/ _ '// __// __/ / _ \
/_/   \___//__//_//_//_/  /___/\__/ \_,_//_/   \__/ /_//_/`

const rpcHeader = `
 ______          __    _     ___   ___  ____
/_  __/__  ___  / /   (_)   / _ \ / _ \/ ___/
 / /  / _ \(_-</ _ \ / /   / , _// ___/ /__
/_/   \___//__//_//_//_/  /_/|_|/_/   \___/`

// printHeader writes the role banner to stdout, ahead of structured logging.
func printHeader(master bool) {
	if master {
		fmt.Println(header)
		return
	}
	fmt.Println(rpcHeader)
}
