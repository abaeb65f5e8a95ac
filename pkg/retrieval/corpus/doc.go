// Package corpus supplies documents to a retrieval.Store.
//
// A YAML seed file provides the initial corpus and can be watched for
// additions. Documents added at runtime are appended to a SQLite database
// and loaded back on restart.
package corpus
