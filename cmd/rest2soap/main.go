// rest2soap CLI - REST to SOAP gateway and XML/JSON translation tools
package main

import "github.com/mcsuka/xml-xsd-json/pkg/cli"

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
