// Package export writes audit entries as JSON or CSV.
package export
