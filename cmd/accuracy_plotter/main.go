package main

// main runs the root command; with no arguments every configured dataset is
// re-plotted from the result files in the working directory.
func main() {
	Execute()
}
