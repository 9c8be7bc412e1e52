//go:build dataflow_nocheck

package internal

const checksEnabled = false
