// Package config locates, loads and merges pgdb2 connection settings.
//
// Settings normally live in a JSON file named pgdb.json inside the
// directory named by the PGDB_HOME environment variable, falling back
// to the current user's home directory. A second file named
// pgdb.json.<hostname> may sit next to it; when present its keys are
// merged over the base file, so a shared base can be specialized per
// machine without copying the whole record.
//
// Both files are skipped entirely when the environment already carries
// a database URL for the requested mode: PGDB_RW for read-write,
// PGDB_RO for read-only. The URL is parsed into the same [Config]
// record the files would have produced.
//
// [Load] ties the three sources together and is the entry point used
// by the root package.
package config
