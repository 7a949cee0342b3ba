package main

import (
	"flag"
	"os"

	"github.com/m-lab/go/cloud/bqx"
	"github.com/m-lab/go/rtx"
	"github.com/m-lab/pingslo/pkg/model"

	"cloud.google.com/go/bigquery"
)

var archivalSchema string

func init() {
	flag.StringVar(&archivalSchema, "archival", "/var/spool/datatypes/pingslo.json", "filename to write the archival row schema")
}

// schema returns the BigQuery schema of model.ArchivalRow as JSON, with no
// required fields.
func schema() ([]byte, error) {
	sch, err := bigquery.InferSchema(model.ArchivalRow{})
	if err != nil {
		return nil, err
	}
	sch = bqx.RemoveRequired(sch)
	return sch.ToJSONFields()
}

func main() {
	flag.Parse()
	// Generate and save the schema for autoloading.
	b, err := schema()
	rtx.Must(err, "failed to generate archival schema")
	err = os.WriteFile(archivalSchema, b, 0o644)
	rtx.Must(err, "failed to write archival schema")
}
