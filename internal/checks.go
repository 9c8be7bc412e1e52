//go:build !dataflow_nocheck

package internal

// contract checks are compiled in unless built with the dataflow_nocheck tag
const checksEnabled = true
