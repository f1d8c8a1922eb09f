// Package config resolves the runtime's global defaults (parallelism,
// chunk size, OBIM back-scan period, thread binding) from the
// environment and an optional configuration file.
//
// Resolution order, later wins:
//
//  1. built-in defaults (GOMAXPROCS workers, 64-item chunks, back-scan 16,
//     no thread binding),
//  2. a YAML/TOML/JSON file named by AMORPH_CONFIG (if set),
//  3. AMORPH_* environment variables (AMORPH_PARALLELISM, AMORPH_CHUNK_SIZE,
//     AMORPH_BACK_SCAN, AMORPH_BIND_THREADS).
//
// Call-site options on the parallel drivers override all of the above for
// a single loop.
package config
