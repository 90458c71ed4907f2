package main

import "github.com/disuhitarth/EcommerceConcept/cmd/api/cmd"

func main() {
	cmd.Execute()
}
