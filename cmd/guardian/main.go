// Guardian - Resource Waste Estimation Engine
// Scan. Estimate. Report.
package main

func main() {
	Execute()
}
