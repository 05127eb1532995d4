package store

import _ "embed"

// Schema is the DDL for the public-body tables. Applied by deployment
// tooling and by the integration-test container setup.
//
//go:embed schema.sql
var Schema string
