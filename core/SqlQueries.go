package core

// SqlQuery is one named summary query run against the staged findings
// database when a report is generated.
type SqlQuery struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`
}

// SqlQueries is the yaml-loaded set of summary queries (see queries.yaml).
type SqlQueries struct {
	Queries []SqlQuery `yaml:"queries"`
}
