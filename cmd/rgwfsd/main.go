package main

import "github.com/cohortfs/rgwfs/cmd/rgwfsd/cmd"

func main() {
	cmd.Execute()
}
