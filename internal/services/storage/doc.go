// Package storage performs the direct object-storage upload using the
// presigned POST fields obtained from the vendor API. It is the one network
// boundary that does not carry the API token.
package storage
