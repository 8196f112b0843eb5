package main

import "github.com/surveykit/surveyprep/cmd"

func main() {
	cmd.Execute()
}
