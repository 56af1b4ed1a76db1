// Command schemagen writes the JSON schema of the kubectl-fluidos
// configuration file.
package main

import (
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/fluidos-project/kubectl-fluidos/pkg/config"
)

var outFile = pflag.StringP("out", "o", config.SchemaFileName, "Output file for the generated schema")

func main() {
	pflag.Parse()

	jsData, err := config.Schema()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
